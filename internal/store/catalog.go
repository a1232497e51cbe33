package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"starwarsapi/internal/models"
)

var (
	// ErrCharacterNotFound signals a missing character record.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrPlanetNotFound signals a missing planet record.
	ErrPlanetNotFound = errors.New("planet not found")
)

const (
	characterColumns = `id, name, height, mass, hair_color, skin_color, eye_color, birth_year, gender`
	planetColumns    = `id, name, diameter, rotation_period, orbital_period, gravity, population, climate, terrain`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (models.Character, error) {
	var c models.Character
	err := row.Scan(&c.ID, &c.Name, &c.Height, &c.Mass, &c.HairColor, &c.SkinColor, &c.EyeColor, &c.BirthYear, &c.Gender)
	return c, err
}

func scanPlanet(row rowScanner) (models.Planet, error) {
	var p models.Planet
	err := row.Scan(&p.ID, &p.Name, &p.Diameter, &p.RotationPeriod, &p.OrbitalPeriod, &p.Gravity, &p.Population, &p.Climate, &p.Terrain)
	return p, err
}

// GetCharacter returns the character with the given id.
func (s *Store) GetCharacter(ctx context.Context, id int64) (models.Character, error) {
	c, err := scanCharacter(s.db.QueryRowContext(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Character{}, ErrCharacterNotFound
		}
		return models.Character{}, fmt.Errorf("select character: %w", err)
	}
	return c, nil
}

// GetPlanet returns the planet with the given id.
func (s *Store) GetPlanet(ctx context.Context, id int64) (models.Planet, error) {
	p, err := scanPlanet(s.db.QueryRowContext(ctx, `
		SELECT `+planetColumns+`
		FROM planets
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Planet{}, ErrPlanetNotFound
		}
		return models.Planet{}, fmt.Errorf("select planet: %w", err)
	}
	return p, nil
}

// ListCharacters returns every character ordered by id.
func (s *Store) ListCharacters(ctx context.Context) ([]models.Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select characters: %w", err)
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return characters, nil
}

// ListPlanets returns every planet ordered by id.
func (s *Store) ListPlanets(ctx context.Context) ([]models.Planet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+planetColumns+`
		FROM planets
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select planets: %w", err)
	}
	defer rows.Close()

	planets := []models.Planet{}
	for rows.Next() {
		p, err := scanPlanet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planet: %w", err)
		}
		planets = append(planets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate planets: %w", err)
	}
	return planets, nil
}

// CharacterNames resolves character ids to names. Unknown ids are absent
// from the result.
func (s *Store) CharacterNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.namesByID(ctx, "characters", ids)
}

// PlanetNames resolves planet ids to names. Unknown ids are absent from the
// result.
func (s *Store) PlanetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.namesByID(ctx, "planets", ids)
}

func (s *Store) namesByID(ctx context.Context, table string, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM `+table+`
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select %s names: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan %s name: %w", table, err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s names: %w", table, err)
	}
	return names, nil
}
