package models

import "errors"

// Erreurs métier renvoyées par les règles pures (machines à états, coupons).
// Les handlers les traduisent en statuts HTTP (404, 409, 422, 403).
var (
	ErrIllegalStatusTransition = errors.New("transition de statut non autorisée")
	ErrTransitionForbidden     = errors.New("rôle non autorisé pour cette transition")

	ErrCouponInactive  = errors.New("coupon inactif")
	ErrCouponExpired   = errors.New("coupon expiré")
	ErrCouponExhausted = errors.New("coupon épuisé")

	ErrCouponAlreadyApplied = errors.New("coupon déjà appliqué à cette réservation")
	ErrOtherCouponApplied   = errors.New("un autre coupon est déjà appliqué à cette réservation")

	ErrMaxUsesNegative  = errors.New("max_uses ne peut pas être négatif")
	ErrMaxUsesBelowUsed = errors.New("max_uses inférieur aux utilisations déjà consommées")
)

// IsCouponNotEligible regroupe les trois motifs d'inéligibilité d'un coupon.
func IsCouponNotEligible(err error) bool {
	return errors.Is(err, ErrCouponInactive) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponExhausted)
}
