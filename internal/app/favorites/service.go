package favorites

import (
	"context"
	"errors"
	"fmt"

	"starwarsapi/internal/logging"
	"starwarsapi/internal/models"
	"starwarsapi/internal/store"
)

var (
	// ErrUnauthorized is returned when a mutating call has no verified actor.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when the referenced character or planet does not exist.
	ErrNotFound = errors.New("catalog entity not found")
	// ErrUnavailable wraps storage or catalog failures.
	ErrUnavailable = errors.New("favorites unavailable")
)

// Outcome reports what a mutating call did. None of the outcomes is an error.
type Outcome int

const (
	Created Outcome = iota + 1
	AlreadyExists
	Removed
	AlreadyAbsent
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyExists:
		return "already_exists"
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already_absent"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is returned by the add operations. Favorite is the stored record,
// either the one just created or the one that already existed.
type Result struct {
	Outcome  Outcome
	Favorite models.Favorite
}

// Entry is a favorite resolved to the display name of its catalog entity.
type Entry struct {
	Favorite models.Favorite `json:"favorite"`
	Name     string          `json:"name"`
}

// Store defines persistence operations required for favorites workflows.
type Store interface {
	AddFavorite(ctx context.Context, userID int64, target models.Target) (models.Favorite, bool, error)
	RemoveFavorite(ctx context.Context, userID int64, target models.Target) (bool, error)
	FavoritesByUser(ctx context.Context, userID int64) ([]models.Favorite, error)
	IsFavorite(ctx context.Context, userID int64, target models.Target) (bool, error)
}

// Catalog is the read-only view of characters and planets.
type Catalog interface {
	GetCharacter(ctx context.Context, id int64) (models.Character, error)
	GetPlanet(ctx context.Context, id int64) (models.Planet, error)
	CharacterNames(ctx context.Context, ids []int64) (map[int64]string, error)
	PlanetNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Service describes the favorites operations used by HTTP handlers.
type Service interface {
	ListForUser(ctx context.Context, userID int64) ([]Entry, error)
	AddCharacterFavorite(ctx context.Context, actorID, characterID int64) (Result, error)
	AddPlanetFavorite(ctx context.Context, actorID, planetID int64) (Result, error)
	RemoveCharacterFavorite(ctx context.Context, actorID, characterID int64) (Outcome, error)
	RemovePlanetFavorite(ctx context.Context, actorID, planetID int64) (Outcome, error)
	IsFavorite(ctx context.Context, actorID int64, target models.Target) (bool, error)
}

type service struct {
	store   Store
	catalog Catalog
	locks   *keyLocker
}

// New constructs a favorites Service backed by the given store and catalog.
func New(st Store, catalog Catalog) Service {
	return &service{
		store:   st,
		catalog: catalog,
		locks:   newKeyLocker(),
	}
}

// ListForUser returns every favorite owned by userID with its display name.
// Reading is not restricted to the owner.
func (s *service) ListForUser(ctx context.Context, userID int64) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := []Entry{}
	if userID <= 0 {
		return entries, nil
	}

	favs, err := s.store.FavoritesByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}

	var characterIDs, planetIDs []int64
	for _, fav := range favs {
		switch fav.Target.Kind() {
		case models.KindCharacter:
			characterIDs = append(characterIDs, fav.Target.ID())
		case models.KindPlanet:
			planetIDs = append(planetIDs, fav.Target.ID())
		}
	}

	characterNames, err := s.catalog.CharacterNames(ctx, characterIDs)
	if err != nil {
		return nil, unavailable(err)
	}
	planetNames, err := s.catalog.PlanetNames(ctx, planetIDs)
	if err != nil {
		return nil, unavailable(err)
	}

	for _, fav := range favs {
		var (
			name string
			ok   bool
		)
		switch fav.Target.Kind() {
		case models.KindCharacter:
			name, ok = characterNames[fav.Target.ID()]
		case models.KindPlanet:
			name, ok = planetNames[fav.Target.ID()]
		}
		if !ok {
			logging.WithContext(ctx).Warn().
				Int64("favorite_id", fav.ID).
				Stringer("target", fav.Target).
				Msg("favorite references a missing catalog entity")
			continue
		}
		entries = append(entries, Entry{Favorite: fav, Name: name})
	}

	return entries, nil
}

func (s *service) AddCharacterFavorite(ctx context.Context, actorID, characterID int64) (Result, error) {
	return s.add(ctx, actorID, models.CharacterTarget(characterID))
}

func (s *service) AddPlanetFavorite(ctx context.Context, actorID, planetID int64) (Result, error) {
	return s.add(ctx, actorID, models.PlanetTarget(planetID))
}

func (s *service) RemoveCharacterFavorite(ctx context.Context, actorID, characterID int64) (Outcome, error) {
	return s.remove(ctx, actorID, models.CharacterTarget(characterID))
}

func (s *service) RemovePlanetFavorite(ctx context.Context, actorID, planetID int64) (Outcome, error) {
	return s.remove(ctx, actorID, models.PlanetTarget(planetID))
}

func (s *service) IsFavorite(ctx context.Context, actorID int64, target models.Target) (bool, error) {
	if actorID <= 0 {
		return false, ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !target.Valid() {
		return false, nil
	}
	ok, err := s.store.IsFavorite(ctx, actorID, target)
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (s *service) add(ctx context.Context, actorID int64, target models.Target) (Result, error) {
	if actorID <= 0 {
		return Result{}, ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.ensureExists(ctx, target); err != nil {
		return Result{}, err
	}

	unlock := s.locks.lock(lockKey{userID: actorID, target: target})
	defer unlock()

	fav, created, err := s.store.AddFavorite(ctx, actorID, target)
	if err != nil {
		return Result{}, unavailable(err)
	}

	outcome := AlreadyExists
	if created {
		outcome = Created
	}
	logging.WithContext(ctx).Debug().
		Int64("actor_id", actorID).
		Stringer("target", target).
		Stringer("outcome", outcome).
		Msg("add favorite")
	return Result{Outcome: outcome, Favorite: fav}, nil
}

func (s *service) remove(ctx context.Context, actorID int64, target models.Target) (Outcome, error) {
	if actorID <= 0 {
		return 0, ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !target.Valid() {
		return AlreadyAbsent, nil
	}

	unlock := s.locks.lock(lockKey{userID: actorID, target: target})
	defer unlock()

	removed, err := s.store.RemoveFavorite(ctx, actorID, target)
	if err != nil {
		return 0, unavailable(err)
	}

	outcome := AlreadyAbsent
	if removed {
		outcome = Removed
	}
	logging.WithContext(ctx).Debug().
		Int64("actor_id", actorID).
		Stringer("target", target).
		Stringer("outcome", outcome).
		Msg("remove favorite")
	return outcome, nil
}

// ensureExists checks the catalog for the target entity.
func (s *service) ensureExists(ctx context.Context, target models.Target) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	var err error
	switch target.Kind() {
	case models.KindCharacter:
		_, err = s.catalog.GetCharacter(ctx, target.ID())
	case models.KindPlanet:
		_, err = s.catalog.GetPlanet(ctx, target.ID())
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrCharacterNotFound), errors.Is(err, store.ErrPlanetNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	return unavailable(err)
}

// unavailable marks a collaborator failure. Cancellation is passed through
// unchanged so callers can tell an aborted request from a broken store.
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
