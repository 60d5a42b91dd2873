package handlers

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"wearmart/internal/models"
)

// normalizeSize canonicalizes a size label. Catalog writes and cart input both
// go through this so "m" and "M" resolve to the same stock entry.
func normalizeSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}

// recalculateTotals is the single source of truth for cart aggregates. Every
// cart mutation goes through it; no handler patches totals incrementally.
func recalculateTotals(items []models.CartItem) (totalPrice float64, totalQuantity int) {
	for _, item := range items {
		totalPrice += item.Price * float64(item.Quantity)
		totalQuantity += item.Quantity
	}
	return totalPrice, totalQuantity
}

// findCartItem returns the index of the line with the given id, or -1.
func findCartItem(items []models.CartItem, itemID primitive.ObjectID) int {
	for i, item := range items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// findCartLine returns the index of the line matching (product, size), or -1.
// Lines are keyed by that pair; adding the same pair twice merges quantities.
func findCartLine(items []models.CartItem, productID primitive.ObjectID, size string) int {
	for i, item := range items {
		if item.ProductID == productID && item.Size == size {
			return i
		}
	}
	return -1
}

// availableStock resolves the sellable quantity for an optional size. A size
// that is not listed on the product has zero stock.
func availableStock(p models.Product, size string) int {
	if size == "" {
		return p.Stock
	}
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity
		}
	}
	return 0
}

// primaryImage returns the first image URL for line snapshots.
func primaryImage(p models.Product) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
