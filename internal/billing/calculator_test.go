package billing

import (
	"errors"
	"testing"
)

func TestComputeInvoiceAmounts(t *testing.T) {
	got, err := ComputeInvoiceAmounts(100.00, 0.10, 0)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.Subtotal != 100.00 {
		t.Errorf("Subtotal = %.2f, attendu 100.00", got.Subtotal)
	}
	if got.PlatformFee != 10.00 {
		t.Errorf("PlatformFee = %.2f, attendu 10.00", got.PlatformFee)
	}
	if got.Total != 110.00 {
		t.Errorf("Total = %.2f, attendu 110.00", got.Total)
	}
}

func TestComputeInvoiceAmountsRounding(t *testing.T) {
	// 33.33 * 15% = 4.9995 → arrondi demi-supérieur au centime = 5.00
	got, err := ComputeInvoiceAmounts(33.33, 0.15, 0)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.PlatformFee != 5.00 {
		t.Errorf("PlatformFee = %.4f, attendu 5.00", got.PlatformFee)
	}
	if got.Total != 38.33 {
		t.Errorf("Total = %.4f, attendu 38.33", got.Total)
	}

	// 10.05 * 5% = 0.5025 → 0.50 (le 5 de rang 3 arrondit le 2, pas le 0)
	got, err = ComputeInvoiceAmounts(10.05, 0.05, 0)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.PlatformFee != 0.50 {
		t.Errorf("PlatformFee = %.4f, attendu 0.50", got.PlatformFee)
	}
}

func TestComputeInvoiceAmountsWithDiscount(t *testing.T) {
	got, err := ComputeInvoiceAmounts(50.00, 0.10, 10.00)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.Total != 45.00 {
		t.Errorf("Total = %.2f, attendu 45.00", got.Total)
	}
}

func TestComputeInvoiceAmountsZeroFee(t *testing.T) {
	got, err := ComputeInvoiceAmounts(80.00, 0, 0)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.PlatformFee != 0 {
		t.Errorf("PlatformFee = %.2f, attendu 0", got.PlatformFee)
	}
	if got.Total != 80.00 {
		t.Errorf("Total = %.2f, attendu 80.00", got.Total)
	}
}

func TestComputeInvoiceAmountsInvalid(t *testing.T) {
	cases := []struct {
		name     string
		total    float64
		pct      float64
		discount float64
	}{
		{"total nul", 0, 0.10, 0},
		{"total négatif", -5, 0.10, 0},
		{"commission négative", 100, -0.01, 0},
		{"commission supérieure à 1", 100, 1.5, 0},
		{"remise négative", 100, 0.10, -1},
		{"remise supérieure au dû", 100, 0.10, 120},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeInvoiceAmounts(tc.total, tc.pct, tc.discount)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("err = %v, attendu ErrInvalidAmount", err)
			}
		})
	}
}

func TestComputeInvoiceAmountsNeverNegative(t *testing.T) {
	// remise exactement égale au total dû → total 0, pas d'erreur
	got, err := ComputeInvoiceAmounts(20.00, 0.10, 22.00)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if got.Total != 0 {
		t.Errorf("Total = %.2f, attendu 0", got.Total)
	}
}
