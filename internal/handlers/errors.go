package handlers

import "fmt"

// insufficientStockError reports a stock check or decrement that could not be
// satisfied.
type insufficientStockError struct {
	ProductID string
	Size      string
	Available int
	Requested int
}

func (e insufficientStockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("only %d items available in stock for size %s", e.Available, e.Size)
	}
	return fmt.Sprintf("only %d items available in stock", e.Available)
}

type productNotFoundError struct {
	ProductID string
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type invalidCouponError struct {
	Code string
}

func (e invalidCouponError) Error() string {
	return "invalid or expired coupon"
}

type belowMinimumError struct {
	MinAmount float64
}

func (e belowMinimumError) Error() string {
	return fmt.Sprintf("order total must be at least %g to use this coupon", e.MinAmount)
}

type alreadyDeliveredError struct{}

func (e alreadyDeliveredError) Error() string {
	return "order already delivered"
}

type notPurchasedError struct{}

func (e notPurchasedError) Error() string {
	return "you can only review products you have purchased"
}

type duplicateReviewError struct{}

func (e duplicateReviewError) Error() string {
	return "you have already reviewed this product"
}

type priceMismatchError struct {
	Field    string
	Claimed  float64
	Computed float64
}

func (e priceMismatchError) Error() string {
	return fmt.Sprintf("%s %g does not match the expected %g", e.Field, e.Claimed, e.Computed)
}
