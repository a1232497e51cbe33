// Package cache provides a Redis read-through layer for catalog lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"starwarsapi/internal/logging"
	"starwarsapi/internal/models"
)

const keyPrefix = "starwarsapi:catalog:"

// Source is the authoritative catalog, normally *store.Store.
type Source interface {
	GetCharacter(ctx context.Context, id int64) (models.Character, error)
	GetPlanet(ctx context.Context, id int64) (models.Planet, error)
	ListCharacters(ctx context.Context) ([]models.Character, error)
	ListPlanets(ctx context.Context) ([]models.Planet, error)
	CharacterNames(ctx context.Context, ids []int64) (map[int64]string, error)
	PlanetNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Catalog serves catalog reads from Redis and falls back to the source on a
// miss or any Redis failure. Errors from the source, including not-found, are
// returned unchanged and never cached.
type Catalog struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
}

// NewCatalog wraps source. A nil client disables caching.
func NewCatalog(source Source, rdb *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{source: source, rdb: rdb, ttl: ttl}
}

func (c *Catalog) GetCharacter(ctx context.Context, id int64) (models.Character, error) {
	return readThrough(ctx, c, fmt.Sprintf("character:%d", id), func() (models.Character, error) {
		return c.source.GetCharacter(ctx, id)
	})
}

func (c *Catalog) GetPlanet(ctx context.Context, id int64) (models.Planet, error) {
	return readThrough(ctx, c, fmt.Sprintf("planet:%d", id), func() (models.Planet, error) {
		return c.source.GetPlanet(ctx, id)
	})
}

func (c *Catalog) ListCharacters(ctx context.Context) ([]models.Character, error) {
	return readThrough(ctx, c, "characters", func() ([]models.Character, error) {
		return c.source.ListCharacters(ctx)
	})
}

func (c *Catalog) ListPlanets(ctx context.Context) ([]models.Planet, error) {
	return readThrough(ctx, c, "planets", func() ([]models.Planet, error) {
		return c.source.ListPlanets(ctx)
	})
}

// CharacterNames is not cached; the batch shape varies per caller.
func (c *Catalog) CharacterNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return c.source.CharacterNames(ctx, ids)
}

// PlanetNames is not cached; the batch shape varies per caller.
func (c *Catalog) PlanetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return c.source.PlanetNames(ctx, ids)
}

func readThrough[T any](ctx context.Context, c *Catalog, key string, load func() (T, error)) (T, error) {
	if c.rdb == nil {
		return load()
	}

	key = keyPrefix + key
	var cached T
	found, err := getJSON(ctx, c.rdb, key, &cached)
	if err != nil {
		logging.WithContext(ctx).Debug().Err(err).Str("key", key).Msg("catalog cache read failed")
	}
	if found {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := setJSON(ctx, c.rdb, key, value, c.ttl); err != nil {
		logging.WithContext(ctx).Debug().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return value, nil
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func getJSON[T any](ctx context.Context, rdb *redis.Client, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}
