package models

import (
	"errors"
	"testing"
)

func TestBookingLifecycle(t *testing.T) {
	steps := []struct {
		from BookingStatus
		to   BookingStatus
		role string
	}{
		{BookingPending, BookingConfirmed, RoleSitter},
		{BookingConfirmed, BookingInProgress, RoleSitter},
		{BookingInProgress, BookingCompleted, RoleSitter},
	}

	for _, s := range steps {
		if err := s.from.Transition(s.to, s.role); err != nil {
			t.Errorf("%s → %s (%s): erreur inattendue %v", s.from, s.to, s.role, err)
		}
	}
}

func TestBookingIllegalTransitions(t *testing.T) {
	cases := []struct {
		from BookingStatus
		to   BookingStatus
	}{
		{BookingPending, BookingInProgress},
		{BookingPending, BookingCompleted},
		{BookingConfirmed, BookingCompleted},
		{BookingCompleted, BookingConfirmed},
		{BookingCompleted, BookingPending},
		{BookingCancelled, BookingConfirmed},
		{BookingCancelled, BookingPending},
	}

	for _, tc := range cases {
		err := tc.from.Transition(tc.to, RoleAdmin)
		if !errors.Is(err, ErrIllegalStatusTransition) {
			t.Errorf("%s → %s: err = %v, attendu ErrIllegalStatusTransition", tc.from, tc.to, err)
		}
	}
}

func TestBookingRoleEnforcement(t *testing.T) {
	// la confirmation appartient au sitter, pas au client
	if err := BookingPending.Transition(BookingConfirmed, RoleClient); !errors.Is(err, ErrTransitionForbidden) {
		t.Errorf("client confirme: err = %v, attendu ErrTransitionForbidden", err)
	}
	// l'annulation appartient au client, pas au sitter
	if err := BookingPending.Transition(BookingCancelled, RoleSitter); !errors.Is(err, ErrTransitionForbidden) {
		t.Errorf("sitter annule: err = %v, attendu ErrTransitionForbidden", err)
	}
	// la clôture appartient au sitter
	if err := BookingInProgress.Transition(BookingCompleted, RoleClient); !errors.Is(err, ErrTransitionForbidden) {
		t.Errorf("client termine: err = %v, attendu ErrTransitionForbidden", err)
	}
}

func TestBookingAdminCancelOverride(t *testing.T) {
	// l'admin annule depuis n'importe quel état non terminal
	for _, from := range []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress} {
		if err := from.Transition(BookingCancelled, RoleAdmin); err != nil {
			t.Errorf("admin annule depuis %s: erreur inattendue %v", from, err)
		}
	}

	// mais jamais depuis un état terminal
	if err := BookingCompleted.Transition(BookingCancelled, RoleAdmin); !errors.Is(err, ErrIllegalStatusTransition) {
		t.Errorf("admin annule depuis completed: err = %v, attendu ErrIllegalStatusTransition", err)
	}
	if err := BookingCancelled.Transition(BookingCancelled, RoleAdmin); !errors.Is(err, ErrIllegalStatusTransition) {
		t.Errorf("admin annule depuis cancelled: err = %v, attendu ErrIllegalStatusTransition", err)
	}
}

func TestBookingTerminalStates(t *testing.T) {
	for _, s := range []BookingStatus{BookingCompleted, BookingCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s devrait être terminal", s)
		}
	}
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress} {
		if s.IsTerminal() {
			t.Errorf("%s ne devrait pas être terminal", s)
		}
	}
}

func TestParseBookingStatus(t *testing.T) {
	if _, err := ParseBookingStatus("in_progress"); err != nil {
		t.Errorf("in_progress devrait être valide: %v", err)
	}
	if _, err := ParseBookingStatus("shipped"); err == nil {
		t.Error("shipped ne devrait pas être un statut de réservation")
	}
	if _, err := ParseBookingStatus(""); err == nil {
		t.Error("le statut vide ne devrait pas être valide")
	}
}
