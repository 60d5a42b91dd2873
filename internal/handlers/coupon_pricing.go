package handlers

import (
	"strings"
	"time"

	"wearmart/internal/models"
)

// normalizeCouponCode matches the stored representation: trimmed, uppercase.
func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCoupon checks a coupon against the order total at a point in time.
// It has no side effects; lookups happen before the call.
func validateCoupon(coupon models.Coupon, orderTotal float64, now time.Time) error {
	if !coupon.IsActive || !coupon.Expiry.After(now) {
		return invalidCouponError{Code: coupon.Code}
	}
	if orderTotal < coupon.MinAmount {
		return belowMinimumError{MinAmount: coupon.MinAmount}
	}
	return nil
}

// computeDiscount caps the flat discount at the coupon's configured maximum.
func computeDiscount(coupon models.Coupon) float64 {
	if coupon.Discount < coupon.MaxAmount {
		return coupon.Discount
	}
	return coupon.MaxAmount
}

// applyDiscount subtracts the effective discount from the total. The result
// is intentionally not clamped at zero; a discount larger than the total
// drives it negative.
func applyDiscount(orderTotal float64, coupon models.Coupon) float64 {
	return orderTotal - computeDiscount(coupon)
}
