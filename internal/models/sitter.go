package models

import (
	"time"

	"github.com/gocql/gocql"
)

type SitterProfile struct {
	ID           gocql.UUID `json:"id" db:"sitter_id"`
	UserID       string     `json:"user_id" db:"user_id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Bio          string     `json:"bio,omitempty" db:"bio"`
	City         string     `json:"city" db:"city"`
	ServiceTypes []string   `json:"service_types,omitempty" db:"service_types"` // "walking", "boarding", "daycare", ...
	PhotoURL     string     `json:"photo_url,omitempty" db:"photo_url"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type SitterRating struct {
	SitterID      gocql.UUID `json:"sitter_id"`
	AverageRating float64    `json:"average_rating"`
	TotalReviews  int        `json:"total_reviews"`
}
