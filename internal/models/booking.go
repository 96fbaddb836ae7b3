package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Booking struct {
	ID         gocql.UUID    `json:"id" db:"booking_id"`
	ClientID   string        `json:"client_id" db:"client_id"`
	PetID      gocql.UUID    `json:"pet_id" db:"pet_id"`
	SitterID   gocql.UUID    `json:"sitter_id" db:"sitter_id"`
	OfferingID gocql.UUID    `json:"offering_id" db:"offering_id"`
	StartTime  time.Time     `json:"start_time" db:"start_time"`
	EndTime    time.Time     `json:"end_time" db:"end_time"`
	TotalPrice float64       `json:"total_price" db:"total_price"` // snapshot du prix de l'offre à la création
	Status     BookingStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  *time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}
