package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Pet struct {
	ID        gocql.UUID `json:"id" db:"pet_id"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	Species   string     `json:"species" db:"species"` // "dog", "cat", ...
	Breed     string     `json:"breed,omitempty" db:"breed"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Notes     string     `json:"notes,omitempty" db:"notes"`
	PhotoURL  string     `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
