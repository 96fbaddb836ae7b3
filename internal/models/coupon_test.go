package models

import (
	"errors"
	"testing"
	"time"

	"github.com/gocql/gocql"
)

func validCoupon() DiscountCoupon {
	return DiscountCoupon{
		Code:      "WELCOME20",
		Type:      CouponPercentage,
		Value:     20,
		MaxUses:   100,
		UsedCount: 0,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}
}

func TestCouponEligibility(t *testing.T) {
	now := time.Now()

	cp := validCoupon()
	if err := cp.Eligibility(now); err != nil {
		t.Errorf("coupon valide refusé: %v", err)
	}

	cp = validCoupon()
	cp.IsActive = false
	if err := cp.Eligibility(now); !errors.Is(err, ErrCouponInactive) {
		t.Errorf("err = %v, attendu ErrCouponInactive", err)
	}

	cp = validCoupon()
	cp.ExpiresAt = now.Add(-time.Minute)
	if err := cp.Eligibility(now); !errors.Is(err, ErrCouponExpired) {
		t.Errorf("err = %v, attendu ErrCouponExpired", err)
	}

	// l'expiration exacte est exclue
	cp = validCoupon()
	cp.ExpiresAt = now
	if err := cp.Eligibility(now); !errors.Is(err, ErrCouponExpired) {
		t.Errorf("expiration à l'instant même: err = %v, attendu ErrCouponExpired", err)
	}

	cp = validCoupon()
	cp.UsedCount = cp.MaxUses
	if err := cp.Eligibility(now); !errors.Is(err, ErrCouponExhausted) {
		t.Errorf("err = %v, attendu ErrCouponExhausted", err)
	}

	// max_uses = 0 signifie illimité
	cp = validCoupon()
	cp.MaxUses = 0
	cp.UsedCount = 1000000
	if err := cp.Eligibility(now); err != nil {
		t.Errorf("coupon illimité refusé: %v", err)
	}
}

func TestCouponNotEligibleHelper(t *testing.T) {
	for _, err := range []error{ErrCouponInactive, ErrCouponExpired, ErrCouponExhausted} {
		if !IsCouponNotEligible(err) {
			t.Errorf("IsCouponNotEligible(%v) devrait être vrai", err)
		}
	}
	if IsCouponNotEligible(ErrIllegalStatusTransition) {
		t.Error("IsCouponNotEligible ne devrait couvrir que les erreurs coupon")
	}
	if IsCouponNotEligible(nil) {
		t.Error("IsCouponNotEligible(nil) devrait être faux")
	}
}

func TestReapplyError(t *testing.T) {
	applied := gocql.TimeUUID()
	other := gocql.TimeUUID()

	// rejouer le même code est un conflit, jamais une seconde consommation
	if err := ReapplyError(applied, applied); !errors.Is(err, ErrCouponAlreadyApplied) {
		t.Errorf("même coupon: err = %v, attendu ErrCouponAlreadyApplied", err)
	}
	if err := ReapplyError(applied, other); !errors.Is(err, ErrOtherCouponApplied) {
		t.Errorf("coupon différent: err = %v, attendu ErrOtherCouponApplied", err)
	}
}

func TestValidateMaxUses(t *testing.T) {
	cp := validCoupon()
	cp.UsedCount = 10

	if err := cp.ValidateMaxUses(10); err != nil {
		t.Errorf("plafond au niveau des consommations refusé: %v", err)
	}
	if err := cp.ValidateMaxUses(0); err != nil {
		t.Errorf("retour à l'illimité refusé: %v", err)
	}
	if err := cp.ValidateMaxUses(-1); !errors.Is(err, ErrMaxUsesNegative) {
		t.Errorf("err = %v, attendu ErrMaxUsesNegative", err)
	}
	if err := cp.ValidateMaxUses(9); !errors.Is(err, ErrMaxUsesBelowUsed) {
		t.Errorf("plafond sous les consommations: err = %v, attendu ErrMaxUsesBelowUsed", err)
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	cp := validCoupon() // 20%
	if got := cp.ComputeDiscount(50.00); got != 10.00 {
		t.Errorf("20%% de 50.00 = %.2f, attendu 10.00", got)
	}

	// arrondi au centime, demi-supérieur
	cp.Value = 15
	if got := cp.ComputeDiscount(33.33); got != 5.00 {
		t.Errorf("15%% de 33.33 = %.4f, attendu 5.00", got)
	}
}

func TestComputeDiscountFixedAmount(t *testing.T) {
	cp := DiscountCoupon{Type: CouponFixedAmount, Value: 5}
	if got := cp.ComputeDiscount(50.00); got != 5.00 {
		t.Errorf("remise fixe = %.2f, attendu 5.00", got)
	}

	// plafonnée au total : jamais de total négatif
	cp.Value = 30
	if got := cp.ComputeDiscount(20.00); got != 20.00 {
		t.Errorf("remise fixe plafonnée = %.2f, attendu 20.00", got)
	}
}

func TestComputeDiscountUnknownType(t *testing.T) {
	cp := DiscountCoupon{Type: "buy_one_get_one", Value: 10}
	if got := cp.ComputeDiscount(50.00); got != 0 {
		t.Errorf("type inconnu: remise = %.2f, attendu 0", got)
	}
}
