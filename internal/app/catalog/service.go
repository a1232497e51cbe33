package catalog

import (
	"context"

	"starwarsapi/internal/models"
)

// Store captures the read-only catalog lookups.
type Store interface {
	GetCharacter(ctx context.Context, id int64) (models.Character, error)
	GetPlanet(ctx context.Context, id int64) (models.Planet, error)
	ListCharacters(ctx context.Context) ([]models.Character, error)
	ListPlanets(ctx context.Context) ([]models.Planet, error)
}

// Service exposes the people and planets catalog.
type Service interface {
	Characters(ctx context.Context) ([]models.Character, error)
	Character(ctx context.Context, id int64) (models.Character, error)
	Planets(ctx context.Context) ([]models.Planet, error)
	Planet(ctx context.Context, id int64) (models.Planet, error)
}

type service struct {
	store Store
}

// New constructs a catalog Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Characters(ctx context.Context) ([]models.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListCharacters(ctx)
}

func (s *service) Character(ctx context.Context, id int64) (models.Character, error) {
	if err := ctx.Err(); err != nil {
		return models.Character{}, err
	}
	return s.store.GetCharacter(ctx, id)
}

func (s *service) Planets(ctx context.Context) ([]models.Planet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlanets(ctx)
}

func (s *service) Planet(ctx context.Context, id int64) (models.Planet, error) {
	if err := ctx.Err(); err != nil {
		return models.Planet{}, err
	}
	return s.store.GetPlanet(ctx, id)
}
