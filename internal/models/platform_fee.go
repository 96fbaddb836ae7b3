package models

import (
	"time"

	"github.com/gocql/gocql"
)

// PlatformFee est un barème de commission. Seul l'enregistrement actif le
// plus récent est utilisé pour les nouvelles factures.
type PlatformFee struct {
	ID            gocql.UUID `json:"id" db:"fee_id"`
	FeePercentage float64    `json:"fee_percentage" db:"fee_percentage"` // fraction dans [0,1]
	EffectiveDate time.Time  `json:"effective_date" db:"effective_date"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedBy     string     `json:"created_by" db:"created_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
