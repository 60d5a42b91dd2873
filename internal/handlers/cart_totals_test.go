package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"wearmart/internal/models"
)

func TestRecalculateTotalsMatchesLineSums(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Price: 10, Quantity: 3},
		{ID: primitive.NewObjectID(), Price: 25.5, Quantity: 2},
		{ID: primitive.NewObjectID(), Price: 4, Quantity: 1},
	}

	totalPrice, totalQuantity := recalculateTotals(items)
	if totalPrice != 10*3+25.5*2+4*1 {
		t.Fatalf("expected totalPrice 85, got %v", totalPrice)
	}
	if totalQuantity != 6 {
		t.Fatalf("expected totalQuantity 6, got %v", totalQuantity)
	}
}

func TestRecalculateTotalsEmptyCart(t *testing.T) {
	totalPrice, totalQuantity := recalculateTotals(nil)
	if totalPrice != 0 || totalQuantity != 0 {
		t.Fatalf("expected zero totals for empty cart, got %v/%v", totalPrice, totalQuantity)
	}
}

// Removing a line by subtracting its contribution must agree with a full
// recompute over the remaining lines.
func TestRemovalSubtractionAgreesWithFullRecompute(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Price: 12, Quantity: 2},
		{ID: primitive.NewObjectID(), Price: 7.25, Quantity: 4},
		{ID: primitive.NewObjectID(), Price: 99.9, Quantity: 1},
	}

	fullPrice, fullQuantity := recalculateTotals(items)

	removed := items[1]
	incrementalPrice := fullPrice - removed.Price*float64(removed.Quantity)
	incrementalQuantity := fullQuantity - removed.Quantity

	remaining := append([]models.CartItem{}, items[0], items[2])
	recomputedPrice, recomputedQuantity := recalculateTotals(remaining)

	if incrementalPrice != recomputedPrice {
		t.Fatalf("incremental price %v != recomputed price %v", incrementalPrice, recomputedPrice)
	}
	if incrementalQuantity != recomputedQuantity {
		t.Fatalf("incremental quantity %v != recomputed quantity %v", incrementalQuantity, recomputedQuantity)
	}
}

// Quantity updates via new total = old total - old line + new line must agree
// with a full recompute.
func TestQuantityUpdateIncrementalAgreesWithFullRecompute(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Price: 10, Quantity: 3},
		{ID: primitive.NewObjectID(), Price: 5, Quantity: 2},
	}

	oldPrice, _ := recalculateTotals(items)
	incremental := oldPrice - items[0].Price*float64(items[0].Quantity) + items[0].Price*float64(5)

	items[0].Quantity = 5
	recomputed, _ := recalculateTotals(items)

	if incremental != recomputed {
		t.Fatalf("incremental %v != recomputed %v", incremental, recomputed)
	}
}

func TestFindCartLineMergesOnProductAndSize(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), ProductID: productID, Size: "M", Quantity: 1},
		{ID: primitive.NewObjectID(), ProductID: productID, Size: "L", Quantity: 1},
	}

	if idx := findCartLine(items, productID, "M"); idx != 0 {
		t.Fatalf("expected index 0 for size M, got %d", idx)
	}
	if idx := findCartLine(items, productID, "L"); idx != 1 {
		t.Fatalf("expected index 1 for size L, got %d", idx)
	}
	if idx := findCartLine(items, productID, "XL"); idx != -1 {
		t.Fatalf("expected -1 for missing size, got %d", idx)
	}
	if idx := findCartLine(items, primitive.NewObjectID(), "M"); idx != -1 {
		t.Fatalf("expected -1 for other product, got %d", idx)
	}
}

func TestFindCartItem(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID()},
		{ID: primitive.NewObjectID()},
	}

	if idx := findCartItem(items, items[1].ID); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if idx := findCartItem(items, primitive.NewObjectID()); idx != -1 {
		t.Fatalf("expected -1 for unknown id, got %d", idx)
	}
}

// Lowercase or padded size input must resolve to the same stock entry the
// catalog stores.
func TestNormalizeSizeMatchesCatalogSizes(t *testing.T) {
	if got := normalizeSize(" m "); got != "M" {
		t.Fatalf("expected M, got %q", got)
	}
	if got := normalizeSize("xl"); got != "XL" {
		t.Fatalf("expected XL, got %q", got)
	}
	if got := normalizeSize(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}

	product := models.Product{
		Sizes: []models.SizeStock{{Size: "M", Quantity: 4}},
	}
	if got := availableStock(product, normalizeSize("m")); got != 4 {
		t.Fatalf("lowercase size must see the catalog stock, got %d", got)
	}
}

func TestAvailableStockFlatAndSized(t *testing.T) {
	product := models.Product{
		Stock: 7,
		Sizes: []models.SizeStock{
			{Size: "S", Quantity: 2},
			{Size: "M", Quantity: 0},
		},
	}

	if got := availableStock(product, ""); got != 7 {
		t.Fatalf("expected flat stock 7, got %d", got)
	}
	if got := availableStock(product, "S"); got != 2 {
		t.Fatalf("expected size S stock 2, got %d", got)
	}
	if got := availableStock(product, "M"); got != 0 {
		t.Fatalf("expected size M stock 0, got %d", got)
	}
	if got := availableStock(product, "XXL"); got != 0 {
		t.Fatalf("expected 0 for unlisted size, got %d", got)
	}
}

// Scenario from the pricing rules: product with stock 5 at price 10, cart at
// quantity 3 totals 30; raising the quantity to 6 must be refused by the
// stock check while the cart stays at 3/30.
func TestQuantityUpdateBeyondStockLeavesCartUntouched(t *testing.T) {
	product := models.Product{Stock: 5, Price: 10}
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Price: product.Price, Quantity: 3},
	}

	totalPrice, totalQuantity := recalculateTotals(items)
	if totalPrice != 30 || totalQuantity != 3 {
		t.Fatalf("expected 30/3, got %v/%v", totalPrice, totalQuantity)
	}

	requested := 6
	if availableStock(product, "") >= requested {
		t.Fatal("expected stock check to refuse quantity 6 with stock 5")
	}

	// The handler bails before mutating; the cart is unchanged.
	totalPrice, totalQuantity = recalculateTotals(items)
	if totalPrice != 30 || totalQuantity != 3 {
		t.Fatalf("cart changed after refused update: %v/%v", totalPrice, totalQuantity)
	}
}
