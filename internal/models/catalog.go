package models

// Character is a person from the catalog (exposed under /people).
type Character struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Height    string `json:"height,omitempty" db:"height"`
	Mass      string `json:"mass,omitempty" db:"mass"`
	HairColor string `json:"hair_color,omitempty" db:"hair_color"`
	SkinColor string `json:"skin_color,omitempty" db:"skin_color"`
	EyeColor  string `json:"eye_color,omitempty" db:"eye_color"`
	BirthYear string `json:"birth_year,omitempty" db:"birth_year"`
	Gender    string `json:"gender,omitempty" db:"gender"`
}

// Planet is a planet from the catalog.
type Planet struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Diameter       string `json:"diameter,omitempty" db:"diameter"`
	RotationPeriod string `json:"rotation_period,omitempty" db:"rotation_period"`
	OrbitalPeriod  string `json:"orbital_period,omitempty" db:"orbital_period"`
	Gravity        string `json:"gravity,omitempty" db:"gravity"`
	Population     string `json:"population,omitempty" db:"population"`
	Climate        string `json:"climate,omitempty" db:"climate"`
	Terrain        string `json:"terrain,omitempty" db:"terrain"`
}
