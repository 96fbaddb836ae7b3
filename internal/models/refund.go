package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Refund struct {
	ID             gocql.UUID `json:"id" db:"refund_id"`
	InvoiceID      gocql.UUID `json:"invoice_id" db:"invoice_id"`
	BookingID      gocql.UUID `json:"booking_id" db:"booking_id"`
	AccountID      string     `json:"account_id" db:"account_id"`
	Reason         string     `json:"reason" db:"reason"`
	Status         string     `json:"status" db:"status"` // pending, approved, rejected, completed
	RefundAmount   float64    `json:"refund_amount" db:"refund_amount"`
	StripeRefundID string     `json:"stripe_refund_id,omitempty" db:"stripe_refund_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
