package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Review struct {
	ID         gocql.UUID `json:"id" db:"review_id"`
	SitterID   gocql.UUID `json:"sitter_id" db:"sitter_id"`
	BookingID  gocql.UUID `json:"booking_id" db:"booking_id"`
	ClientID   string     `json:"client_id" db:"client_id"`
	ClientName string     `json:"client_name" db:"client_name"`
	Rating     int        `json:"rating" db:"rating"` // 1-5
	Comment    string     `json:"comment" db:"comment"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
