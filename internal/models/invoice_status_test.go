package models

import (
	"errors"
	"testing"
)

func TestInvoiceLifecycle(t *testing.T) {
	steps := []struct {
		from InvoiceStatus
		to   InvoiceStatus
	}{
		{InvoiceDraft, InvoiceSent},
		{InvoiceSent, InvoicePartiallyPaid},
		{InvoicePartiallyPaid, InvoicePaid},
		{InvoicePaid, InvoiceRefunded},
	}

	for _, s := range steps {
		if err := s.from.Transition(s.to); err != nil {
			t.Errorf("%s → %s: erreur inattendue %v", s.from, s.to, err)
		}
	}

	// paiement direct sans passer par partially_paid
	if err := InvoiceSent.Transition(InvoicePaid); err != nil {
		t.Errorf("sent → paid: erreur inattendue %v", err)
	}
}

func TestInvoiceIllegalTransitions(t *testing.T) {
	cases := []struct {
		from InvoiceStatus
		to   InvoiceStatus
	}{
		{InvoiceDraft, InvoicePaid},
		{InvoiceDraft, InvoiceRefunded},
		{InvoiceSent, InvoiceDraft},
		{InvoicePaid, InvoiceCancelled},
		{InvoicePaid, InvoiceSent},
		{InvoiceRefunded, InvoicePaid},
		{InvoiceCancelled, InvoiceSent},
		// refunded n'est atteignable que depuis paid
		{InvoicePartiallyPaid, InvoiceRefunded},
	}

	for _, tc := range cases {
		if err := tc.from.Transition(tc.to); !errors.Is(err, ErrIllegalStatusTransition) {
			t.Errorf("%s → %s: err = %v, attendu ErrIllegalStatusTransition", tc.from, tc.to, err)
		}
	}
}

func TestInvoiceCancellableStates(t *testing.T) {
	// annulable tant que rien n'est intégralement payé
	for _, from := range []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePartiallyPaid} {
		if err := from.Transition(InvoiceCancelled); err != nil {
			t.Errorf("%s → cancelled: erreur inattendue %v", from, err)
		}
	}
}

func TestInvoiceOverdueIsFrozen(t *testing.T) {
	// overdue est posé par le job de relance, la machine ne le fait jamais
	// bouger dans un sens ou dans l'autre
	if !InvoiceOverdue.IsTerminal() {
		t.Error("overdue ne devrait avoir aucune transition sortante")
	}
	for _, from := range []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePartiallyPaid} {
		if from.CanTransitionTo(InvoiceOverdue) {
			t.Errorf("%s → overdue ne devrait pas être dans la table", from)
		}
	}
}

func TestInvoiceTerminalStates(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceCancelled, InvoiceRefunded, InvoiceOverdue} {
		if !s.IsTerminal() {
			t.Errorf("%s devrait être terminal", s)
		}
	}
	for _, s := range []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePartiallyPaid, InvoicePaid} {
		if s.IsTerminal() {
			t.Errorf("%s ne devrait pas être terminal", s)
		}
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	if _, err := ParseInvoiceStatus("partially_paid"); err != nil {
		t.Errorf("partially_paid devrait être valide: %v", err)
	}
	if _, err := ParseInvoiceStatus("pending"); err == nil {
		t.Error("pending ne devrait pas être un statut de facture")
	}
}
