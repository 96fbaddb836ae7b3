package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Invoice est le document de facturation généré une fois la réservation
// terminée. Invariant : total = subtotal + platform_fee - discount_amount,
// toujours ≥ 0. Une seule facture par réservation.
type Invoice struct {
	ID              gocql.UUID    `json:"id" db:"invoice_id"`
	BookingID       gocql.UUID    `json:"booking_id" db:"booking_id"`
	InvoiceNumber   string        `json:"invoice_number" db:"invoice_number"`
	ClientID        string        `json:"client_id" db:"client_id"`
	Subtotal        float64       `json:"subtotal" db:"subtotal"`
	PlatformFee     float64       `json:"platform_fee" db:"platform_fee"`
	DiscountAmount  float64       `json:"discount_amount" db:"discount_amount"`
	Total           float64       `json:"total" db:"total"`
	AmountPaid      float64       `json:"amount_paid" db:"amount_paid"`
	Status          InvoiceStatus `json:"status" db:"status"`
	IssueDate       time.Time     `json:"issue_date" db:"issue_date"`
	DueDate         time.Time     `json:"due_date" db:"due_date"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}
