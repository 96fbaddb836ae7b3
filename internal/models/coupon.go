package models

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

// Types de remise supportés.
const (
	CouponPercentage  = "percentage"
	CouponFixedAmount = "fixed_amount"
)

type DiscountCoupon struct {
	ID        gocql.UUID `json:"id"`
	Code      string     `json:"code"`
	Type      string     `json:"type"` // "percentage", "fixed_amount"
	Value     float64    `json:"value"`
	MaxUses   int        `json:"max_uses"` // 0 = illimité
	UsedCount int        `json:"used_count"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsActive  bool       `json:"is_active"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AppliedCoupon est la trace immuable d'une utilisation de coupon sur une
// réservation. Au plus un enregistrement par couple (booking_id, coupon_id),
// garanti par la clé primaire de la table applied_coupons.
type AppliedCoupon struct {
	ID             gocql.UUID `json:"id"`
	BookingID      gocql.UUID `json:"booking_id"`
	AccountID      string     `json:"account_id"`
	CouponID       gocql.UUID `json:"coupon_id"`
	DiscountAmount float64    `json:"discount_amount"`
	AppliedAt      time.Time  `json:"applied_at"`
}

type CouponValidation struct {
	IsValid      bool    `json:"is_valid"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Discount     float64 `json:"discount"`
	Type         string  `json:"type"`
	Code         string  `json:"code"`
}

// Eligibility vérifie que le coupon est utilisable à l'instant donné.
// Retourne ErrCouponInactive, ErrCouponExpired ou ErrCouponExhausted.
func (cp *DiscountCoupon) Eligibility(now time.Time) error {
	if !cp.IsActive {
		return ErrCouponInactive
	}
	if !now.Before(cp.ExpiresAt) {
		return ErrCouponExpired
	}
	if cp.MaxUses > 0 && cp.UsedCount >= cp.MaxUses {
		return ErrCouponExhausted
	}
	return nil
}

// ReapplyError classe le conflit quand la réservation porte déjà un coupon :
// rejouer le même code ne re-consomme jamais, et une réservation ne porte
// qu'un seul coupon.
func ReapplyError(existingID, requestedID gocql.UUID) error {
	if existingID == requestedID {
		return ErrCouponAlreadyApplied
	}
	return ErrOtherCouponApplied
}

// ValidateMaxUses vérifie qu'un nouveau plafond reste cohérent avec les
// utilisations déjà consommées (0 = illimité).
func (cp *DiscountCoupon) ValidateMaxUses(maxUses int) error {
	if maxUses < 0 {
		return ErrMaxUsesNegative
	}
	if maxUses > 0 && maxUses < cp.UsedCount {
		return ErrMaxUsesBelowUsed
	}
	return nil
}

// ComputeDiscount calcule la remise en euros pour un total de réservation.
// Le calcul passe par decimal pour éviter toute dérive flottante :
// pourcentage arrondi au centime (demi-supérieur), montant fixe plafonné au
// total de la réservation pour ne jamais produire un total négatif.
func (cp *DiscountCoupon) ComputeDiscount(bookingTotal float64) float64 {
	total := decimal.NewFromFloat(bookingTotal)

	switch cp.Type {
	case CouponPercentage:
		pct := decimal.NewFromFloat(cp.Value).Div(decimal.NewFromInt(100))
		return total.Mul(pct).Round(2).InexactFloat64()
	case CouponFixedAmount:
		discount := decimal.NewFromFloat(cp.Value).Round(2)
		if discount.GreaterThan(total) {
			return total.Round(2).InexactFloat64()
		}
		return discount.InexactFloat64()
	}
	return 0
}
