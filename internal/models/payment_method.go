package models

import (
	"time"

	"github.com/gocql/gocql"
)

// PaymentMethod référence un moyen de paiement enregistré côté Stripe.
// On ne stocke jamais le numéro de carte, uniquement l'ID Stripe et les
// informations d'affichage (marque, 4 derniers chiffres).
type PaymentMethod struct {
	ID                    gocql.UUID `json:"id" db:"payment_method_id"`
	AccountID             string     `json:"account_id" db:"account_id"`
	StripePaymentMethodID string     `json:"-" db:"stripe_payment_method_id"`
	Brand                 string     `json:"brand" db:"brand"`
	Last4                 string     `json:"last4" db:"last4"`
	ExpMonth              int        `json:"exp_month" db:"exp_month"`
	ExpYear               int        `json:"exp_year" db:"exp_year"`
	IsDefault             bool       `json:"is_default" db:"is_default"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
}
