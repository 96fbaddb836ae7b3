package models

import "fmt"

// BookingStatus représente l'état d'une réservation dans son cycle de vie.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// bookingTransitions définit la machine à états des réservations :
// transition autorisée → rôles qui peuvent la déclencher.
// L'admin peut en plus annuler depuis n'importe quel état non terminal.
var bookingTransitions = map[BookingStatus]map[BookingStatus][]string{
	BookingPending: {
		BookingConfirmed: {RoleSitter, RoleAdmin},
		BookingCancelled: {RoleClient, RoleAdmin},
	},
	BookingConfirmed: {
		BookingInProgress: {RoleSitter, RoleAdmin},
		BookingCancelled:  {RoleClient, RoleAdmin},
	},
	BookingInProgress: {
		BookingCompleted: {RoleSitter, RoleAdmin},
	},
	BookingCompleted: {},
	BookingCancelled: {},
}

// IsValid retourne true si le statut est reconnu.
func (s BookingStatus) IsValid() bool {
	_, exists := bookingTransitions[s]
	return exists
}

// IsTerminal retourne true si plus aucune transition n'est possible.
// completed est terminal même pour l'admin (pas d'annulation après coup).
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := bookingTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanTransitionTo retourne true si la transition existe pour au moins un rôle.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if target == BookingCancelled && !s.IsTerminal() {
		// override admin : annulable depuis tout état non terminal
		return true
	}
	_, ok := bookingTransitions[s][target]
	return ok
}

// Transition vérifie qu'un acteur avec le rôle donné peut faire passer la
// réservation de s vers target. Retourne ErrIllegalStatusTransition si la
// paire n'existe pas, ErrTransitionForbidden si le rôle n'y est pas autorisé.
func (s BookingStatus) Transition(target BookingStatus, role string) error {
	roles, ok := bookingTransitions[s][target]
	if !ok {
		// override admin vers cancelled depuis un état non terminal
		if target == BookingCancelled && role == RoleAdmin && !s.IsTerminal() {
			return nil
		}
		return fmt.Errorf("%w: %s → %s", ErrIllegalStatusTransition, s, target)
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	if target == BookingCancelled && role == RoleAdmin && !s.IsTerminal() {
		return nil
	}
	return fmt.Errorf("%w: rôle %s pour %s → %s", ErrTransitionForbidden, role, s, target)
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus convertit une string en BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("statut de réservation invalide: %s", s)
	}
	return status, nil
}
