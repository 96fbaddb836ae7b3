package billing

import (
	"errors"
	"testing"
	"time"

	"pawcare_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

func TestSettleStatusAccumulatesPartialPayments(t *testing.T) {
	// un deuxième paiement partiel s'accumule sans repasser par la machine
	status, err := settleStatus(models.InvoicePartiallyPaid,
		decimal.NewFromFloat(60.00), decimal.NewFromFloat(110.00))
	if err != nil {
		t.Errorf("accumulation partielle refusée: %v", err)
	}
	if status != models.InvoicePartiallyPaid {
		t.Errorf("statut = %s, attendu partially_paid", status)
	}
}

func TestSettleStatusReachesPaid(t *testing.T) {
	cases := []struct {
		from  models.InvoiceStatus
		paid  float64
		total float64
		want  models.InvoiceStatus
	}{
		{models.InvoiceSent, 50.00, 110.00, models.InvoicePartiallyPaid},
		{models.InvoiceSent, 110.00, 110.00, models.InvoicePaid},
		{models.InvoicePartiallyPaid, 110.00, 110.00, models.InvoicePaid},
	}

	for _, tc := range cases {
		status, err := settleStatus(tc.from, decimal.NewFromFloat(tc.paid), decimal.NewFromFloat(tc.total))
		if err != nil {
			t.Errorf("%s avec %.2f/%.2f: erreur inattendue %v", tc.from, tc.paid, tc.total, err)
			continue
		}
		if status != tc.want {
			t.Errorf("%s avec %.2f/%.2f: statut = %s, attendu %s", tc.from, tc.paid, tc.total, status, tc.want)
		}
	}
}

func TestSettleStatusRejectsClosedInvoices(t *testing.T) {
	for _, from := range []models.InvoiceStatus{models.InvoiceDraft, models.InvoiceCancelled, models.InvoiceRefunded} {
		if _, err := settleStatus(from, decimal.NewFromFloat(10.00), decimal.NewFromFloat(110.00)); !errors.Is(err, models.ErrIllegalStatusTransition) {
			t.Errorf("%s: err = %v, attendu ErrIllegalStatusTransition", from, err)
		}
	}
}

func TestCancellationRefundRecordsAmountPaid(t *testing.T) {
	now := time.Now()
	inv := models.Invoice{
		ID:            gocql.TimeUUID(),
		BookingID:     gocql.TimeUUID(),
		ClientID:      "client-1",
		InvoiceNumber: "PAW-2026-ab12cd34",
		Total:         110.00,
		AmountPaid:    60.00,
		Status:        models.InvoicePartiallyPaid,
	}

	rec, ok := cancellationRefund(inv, now)
	if !ok {
		t.Fatal("un montant encaissé doit être consigné à l'annulation")
	}
	if rec.RefundAmount != 60.00 {
		t.Errorf("refund_amount = %.2f, attendu 60.00", rec.RefundAmount)
	}
	if rec.Status != "pending" {
		t.Errorf("status = %s, attendu pending", rec.Status)
	}
	if rec.InvoiceID != inv.ID || rec.BookingID != inv.BookingID {
		t.Error("la demande doit référencer la facture et la réservation annulées")
	}
	if rec.AccountID != inv.ClientID {
		t.Errorf("account_id = %s, attendu %s", rec.AccountID, inv.ClientID)
	}
}

func TestCancellationRefundNothingPaid(t *testing.T) {
	inv := models.Invoice{ID: gocql.TimeUUID(), Total: 110.00, AmountPaid: 0, Status: models.InvoiceSent}
	if _, ok := cancellationRefund(inv, time.Now()); ok {
		t.Error("rien encaissé, rien à consigner")
	}
}

func TestEurosToCents(t *testing.T) {
	cases := []struct {
		euros float64
		cents int64
	}{
		{19.99, 1999},
		{10.00, 1000},
		{33.33, 3333},
		{0.10, 10},
	}

	for _, tc := range cases {
		if got := eurosToCents(tc.euros); got != tc.cents {
			t.Errorf("eurosToCents(%.2f) = %d, attendu %d", tc.euros, got, tc.cents)
		}
	}
}
