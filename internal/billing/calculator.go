package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvoiceAmounts est le détail des montants d'une facture.
// Invariant : Total = Subtotal + PlatformFee - remise, jamais négatif.
type InvoiceAmounts struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	Total       float64 `json:"total"`
}

var one = decimal.NewFromInt(1)

// ComputeInvoiceAmounts dérive les montants d'une facture à partir du prix
// verrouillé de la réservation, de la commission plateforme active et d'une
// éventuelle remise déjà appliquée.
//
// Tout le calcul passe par decimal : le sous-total est la copie du prix de
// la réservation, la commission est arrondie au centime (demi-supérieur) et
// le total est borné à zéro. Fonction pure, aucun effet de bord.
func ComputeInvoiceAmounts(bookingTotal, feePercentage, discount float64) (InvoiceAmounts, error) {
	subtotal := decimal.NewFromFloat(bookingTotal)
	pct := decimal.NewFromFloat(feePercentage)
	disc := decimal.NewFromFloat(discount)

	if !subtotal.IsPositive() {
		return InvoiceAmounts{}, fmt.Errorf("%w: prix de réservation %s", ErrInvalidAmount, subtotal)
	}
	if pct.IsNegative() || pct.GreaterThan(one) {
		return InvoiceAmounts{}, fmt.Errorf("%w: commission %s hors de [0,1]", ErrInvalidAmount, pct)
	}
	if disc.IsNegative() {
		return InvoiceAmounts{}, fmt.Errorf("%w: remise négative %s", ErrInvalidAmount, disc)
	}

	subtotal = subtotal.Round(2)
	fee := subtotal.Mul(pct).Round(2)

	// la remise ne peut pas rendre le total négatif
	if disc.GreaterThan(subtotal.Add(fee)) {
		return InvoiceAmounts{}, fmt.Errorf("%w: remise %s supérieure à %s", ErrInvalidAmount, disc, subtotal.Add(fee))
	}

	total := subtotal.Add(fee).Sub(disc)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return InvoiceAmounts{
		Subtotal:    subtotal.InexactFloat64(),
		PlatformFee: fee.InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}, nil
}
