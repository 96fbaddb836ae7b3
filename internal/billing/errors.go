package billing

import "errors"

// Erreurs du calcul de facturation. Les handlers les traduisent en HTTP :
// ErrInvalidAmount → 400, ErrNoActiveFee → 500, ErrDuplicateInvoice → 409,
// ErrBookingNotCompleted → 422.
var (
	ErrInvalidAmount       = errors.New("montant invalide")
	ErrNoActiveFee         = errors.New("aucune commission plateforme active")
	ErrDuplicateInvoice    = errors.New("une facture existe déjà pour cette réservation")
	ErrBookingNotCompleted = errors.New("la réservation n'est pas terminée")
)
