package models

import (
	"time"

	"github.com/gocql/gocql"
)

// ServiceOffering décrit une prestation proposée par un sitter.
// Le prix et la durée sont copiés dans la réservation au moment de la
// création (snapshot immuable), une modification ultérieure de l'offre
// n'affecte jamais les réservations existantes.
type ServiceOffering struct {
	ID              gocql.UUID `json:"id" db:"offering_id"`
	SitterID        gocql.UUID `json:"sitter_id" db:"sitter_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description,omitempty" db:"description"`
	Price           float64    `json:"price" db:"price"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
