package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTarget is returned when a favorite row or request does not name
// exactly one catalog entity.
var ErrInvalidTarget = errors.New("favorite must reference exactly one of character or planet")

// Kind identifies which catalog entity a favorite points to.
type Kind string

const (
	KindCharacter Kind = "character"
	KindPlanet    Kind = "planet"
)

// Target is the catalog entity a favorite points to. The zero value is
// invalid; use CharacterTarget or PlanetTarget.
type Target struct {
	kind Kind
	id   int64
}

// CharacterTarget references the character with the given id.
func CharacterTarget(id int64) Target {
	return Target{kind: KindCharacter, id: id}
}

// PlanetTarget references the planet with the given id.
func PlanetTarget(id int64) Target {
	return Target{kind: KindPlanet, id: id}
}

func (t Target) Kind() Kind { return t.kind }
func (t Target) ID() int64  { return t.id }

// Valid reports whether t was built by one of the constructors with a
// positive id.
func (t Target) Valid() bool {
	return (t.kind == KindCharacter || t.kind == KindPlanet) && t.id > 0
}

func (t Target) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

// Columns returns the (character_id, planet_id) pair used for storage.
// Exactly one of them is non-nil for a valid target.
func (t Target) Columns() (characterID, planetID *int64) {
	id := t.id
	switch t.kind {
	case KindCharacter:
		return &id, nil
	case KindPlanet:
		return nil, &id
	}
	return nil, nil
}

// TargetFromColumns decodes the storage representation, rejecting rows where
// both or neither column is set.
func TargetFromColumns(characterID, planetID sql.NullInt64) (Target, error) {
	switch {
	case characterID.Valid && !planetID.Valid:
		return CharacterTarget(characterID.Int64), nil
	case planetID.Valid && !characterID.Valid:
		return PlanetTarget(planetID.Int64), nil
	}
	return Target{}, ErrInvalidTarget
}

// Favorite is a user's saved reference to one catalog entity.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Target    Target    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON flattens the target into character_id / planet_id fields so
// clients see the same shape the service has always returned.
func (f Favorite) MarshalJSON() ([]byte, error) {
	characterID, planetID := f.Target.Columns()
	return json.Marshal(struct {
		ID          int64     `json:"id"`
		UserID      int64     `json:"user_id"`
		CharacterID *int64    `json:"character_id,omitempty"`
		PlanetID    *int64    `json:"planet_id,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}{
		ID:          f.ID,
		UserID:      f.UserID,
		CharacterID: characterID,
		PlanetID:    planetID,
		CreatedAt:   f.CreatedAt,
	})
}
