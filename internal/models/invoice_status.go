package models

import "fmt"

// InvoiceStatus représente l'état d'une facture.
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "draft"
	InvoiceSent          InvoiceStatus = "sent"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
	// overdue est posé par un job de relance externe, la machine à états
	// ne définit aucune transition entrante ou sortante pour ce statut.
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
	InvoiceRefunded  InvoiceStatus = "refunded"
)

// invoiceTransitions définit la machine à états des factures.
// refunded n'est atteignable que depuis paid, via le flux de remboursement.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:         {InvoiceSent, InvoiceCancelled},
	InvoiceSent:          {InvoicePaid, InvoicePartiallyPaid, InvoiceCancelled},
	InvoicePartiallyPaid: {InvoicePaid, InvoiceCancelled},
	InvoicePaid:          {InvoiceRefunded},
	InvoiceOverdue:       {},
	InvoiceCancelled:     {},
	InvoiceRefunded:      {},
}

func (s InvoiceStatus) IsValid() bool {
	_, exists := invoiceTransitions[s]
	return exists
}

func (s InvoiceStatus) IsTerminal() bool {
	allowed, exists := invoiceTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanTransitionTo retourne true si la transition est dans la table.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, t := range invoiceTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Transition valide le passage de s vers target.
func (s InvoiceStatus) Transition(target InvoiceStatus) error {
	if !s.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s → %s", ErrIllegalStatusTransition, s, target)
	}
	return nil
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// ParseInvoiceStatus convertit une string en InvoiceStatus.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("statut de facture invalide: %s", s)
	}
	return status, nil
}
