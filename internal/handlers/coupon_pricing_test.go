package handlers

import (
	"errors"
	"testing"
	"time"

	"wearmart/internal/models"
)

func activeCoupon(discount, minAmount, maxAmount float64) models.Coupon {
	return models.Coupon{
		Code:      "SAVE",
		Discount:  discount,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Expiry:    time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}
}

func TestComputeDiscountCapsAtMaxAmount(t *testing.T) {
	tests := []struct {
		discount  float64
		maxAmount float64
		want      float64
	}{
		{discount: 20, maxAmount: 15, want: 15},
		{discount: 10, maxAmount: 15, want: 10},
		{discount: 15, maxAmount: 15, want: 15},
	}

	for _, tt := range tests {
		coupon := activeCoupon(tt.discount, 0, tt.maxAmount)
		if got := computeDiscount(coupon); got != tt.want {
			t.Fatalf("computeDiscount(discount=%v, max=%v) = %v, want %v", tt.discount, tt.maxAmount, got, tt.want)
		}
	}
}

// Scenario: coupon {discount:20, maxAmount:15, minAmount:50} on a 100 total
// yields 85.
func TestApplyDiscountCappedScenario(t *testing.T) {
	coupon := activeCoupon(20, 50, 15)

	if err := validateCoupon(coupon, 100, time.Now()); err != nil {
		t.Fatalf("expected coupon to validate, got %v", err)
	}
	if got := applyDiscount(100, coupon); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
}

func TestValidateCouponBelowMinimum(t *testing.T) {
	coupon := activeCoupon(10, 50, 10)

	err := validateCoupon(coupon, 49.99, time.Now())
	var belowMin belowMinimumError
	if !errors.As(err, &belowMin) {
		t.Fatalf("expected belowMinimumError, got %v", err)
	}
	if belowMin.MinAmount != 50 {
		t.Fatalf("expected minAmount 50 in error, got %v", belowMin.MinAmount)
	}

	if err := validateCoupon(coupon, 50, time.Now()); err != nil {
		t.Fatalf("total equal to minimum should validate, got %v", err)
	}
}

func TestValidateCouponInactiveOrExpired(t *testing.T) {
	now := time.Now()

	inactive := activeCoupon(10, 0, 10)
	inactive.IsActive = false
	if err := validateCoupon(inactive, 100, now); err == nil {
		t.Fatal("expected inactive coupon to fail validation")
	}

	expired := activeCoupon(10, 0, 10)
	expired.Expiry = now.Add(-time.Minute)
	var invalid invalidCouponError
	if err := validateCoupon(expired, 100, now); !errors.As(err, &invalid) {
		t.Fatalf("expected invalidCouponError for expired coupon, got %v", err)
	}

	// Expiry exactly at now is treated as expired.
	boundary := activeCoupon(10, 0, 10)
	boundary.Expiry = now
	if err := validateCoupon(boundary, 100, now); err == nil {
		t.Fatal("expected coupon expiring exactly now to fail validation")
	}
}

// A discount larger than the total is not clamped; the result goes negative.
func TestApplyDiscountCanDriveTotalNegative(t *testing.T) {
	coupon := activeCoupon(30, 0, 30)

	if got := applyDiscount(20, coupon); got != -10 {
		t.Fatalf("expected -10, got %v", got)
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	if got := normalizeCouponCode("  save10 "); got != "SAVE10" {
		t.Fatalf("expected SAVE10, got %q", got)
	}
	if got := normalizeCouponCode(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
