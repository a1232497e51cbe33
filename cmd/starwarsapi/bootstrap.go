package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"starwarsapi/internal/models"
	"starwarsapi/internal/store"
)

const (
	demoEmail    = "demo@starwars.dev"
	demoPassword = "maytheforce"
)

var (
	seedCharacters = []models.Character{
		{Name: "Luke Skywalker", Height: "172", Mass: "77", HairColor: "blond", SkinColor: "fair", EyeColor: "blue", BirthYear: "19BBY", Gender: "male"},
		{Name: "C-3PO", Height: "167", Mass: "75", HairColor: "n/a", SkinColor: "gold", EyeColor: "yellow", BirthYear: "112BBY", Gender: "n/a"},
		{Name: "R2-D2", Height: "96", Mass: "32", HairColor: "n/a", SkinColor: "white, blue", EyeColor: "red", BirthYear: "33BBY", Gender: "n/a"},
		{Name: "Darth Vader", Height: "202", Mass: "136", HairColor: "none", SkinColor: "white", EyeColor: "yellow", BirthYear: "41.9BBY", Gender: "male"},
		{Name: "Leia Organa", Height: "150", Mass: "49", HairColor: "brown", SkinColor: "light", EyeColor: "brown", BirthYear: "19BBY", Gender: "female"},
		{Name: "Yoda", Height: "66", Mass: "17", HairColor: "white", SkinColor: "green", EyeColor: "brown", BirthYear: "896BBY", Gender: "male"},
	}

	seedPlanets = []models.Planet{
		{Name: "Tatooine", Diameter: "10465", RotationPeriod: "23", OrbitalPeriod: "304", Gravity: "1 standard", Population: "200000", Climate: "arid", Terrain: "desert"},
		{Name: "Alderaan", Diameter: "12500", RotationPeriod: "24", OrbitalPeriod: "364", Gravity: "1 standard", Population: "2000000000", Climate: "temperate", Terrain: "grasslands, mountains"},
		{Name: "Yavin IV", Diameter: "10200", RotationPeriod: "24", OrbitalPeriod: "4818", Gravity: "1 standard", Population: "1000", Climate: "temperate, tropical", Terrain: "jungle, rainforests"},
		{Name: "Hoth", Diameter: "7200", RotationPeriod: "23", OrbitalPeriod: "549", Gravity: "1.1 standard", Population: "unknown", Climate: "frozen", Terrain: "tundra, ice caves, mountain ranges"},
		{Name: "Dagobah", Diameter: "8900", RotationPeriod: "23", OrbitalPeriod: "341", Gravity: "N/A", Population: "unknown", Climate: "murky", Terrain: "swamp, jungles"},
	}
)

type bootstrapStore interface {
	EnsureSchema(ctx context.Context) error
	CreateUser(ctx context.Context, email, password string) (int64, error)
}

func bootstrap(ctx context.Context, db *sql.DB, dataStore bootstrapStore, seed bool) error {
	if err := dataStore.EnsureSchema(ctx); err != nil {
		return err
	}
	if !seed {
		return nil
	}
	if err := seedCatalog(ctx, db); err != nil {
		return err
	}
	return ensureDemoUser(ctx, dataStore)
}

func ensureDemoUser(ctx context.Context, dataStore bootstrapStore) error {
	if _, err := dataStore.CreateUser(ctx, demoEmail, demoPassword); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	log.Info().Str("email", demoEmail).Msg("demo user created")
	return nil
}

// seedCatalog fills the characters and planets tables when both are empty.
func seedCatalog(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM characters) + (SELECT COUNT(*) FROM planets)
	`).Scan(&count); err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range seedCharacters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO characters (name, height, mass, hair_color, skin_color, eye_color, birth_year, gender)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, c.Name, c.Height, c.Mass, c.HairColor, c.SkinColor, c.EyeColor, c.BirthYear, c.Gender); err != nil {
			return fmt.Errorf("insert character %q: %w", c.Name, err)
		}
	}

	for _, p := range seedPlanets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO planets (name, diameter, rotation_period, orbital_period, gravity, population, climate, terrain)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.Name, p.Diameter, p.RotationPeriod, p.OrbitalPeriod, p.Gravity, p.Population, p.Climate, p.Terrain); err != nil {
			return fmt.Errorf("insert planet %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	tx = nil

	log.Info().Int("characters", len(seedCharacters)).Int("planets", len(seedPlanets)).Msg("catalog seeded")
	return nil
}
