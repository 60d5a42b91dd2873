package handlers

import (
	"errors"
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"wearmart/internal/models"
)

func TestSnapshotCartItemsCopiesLineFields(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{
		{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Name:      "Linen Shirt",
			Price:     49.9,
			Quantity:  2,
			Size:      "M",
			Image:     "shirt.jpg",
		},
	}

	snapshot := snapshotCartItems(items)
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(snapshot))
	}
	got := snapshot[0]
	if got.ProductID != productID || got.Name != "Linen Shirt" || got.Price != 49.9 ||
		got.Quantity != 2 || got.Size != "M" || got.Image != "shirt.jpg" {
		t.Fatalf("snapshot line differs from cart line: %+v", got)
	}
}

// The order snapshot must be independent of later cart or catalog changes.
func TestSnapshotCartItemsIsIndependent(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), ProductID: primitive.NewObjectID(), Name: "Jeans", Price: 80, Quantity: 1},
	}

	snapshot := snapshotCartItems(items)

	items[0].Price = 60
	items[0].Name = "Jeans (Sale)"

	if snapshot[0].Price != 80 || snapshot[0].Name != "Jeans" {
		t.Fatalf("snapshot mutated with the cart: %+v", snapshot[0])
	}
}

func TestSnapshotCartItemsEmptyCart(t *testing.T) {
	snapshot := snapshotCartItems(nil)
	if snapshot == nil || len(snapshot) != 0 {
		t.Fatalf("expected empty non-nil snapshot, got %v", snapshot)
	}
}

func TestComputeOrderCharges(t *testing.T) {
	taxPrice, shippingPrice := computeOrderCharges(100, 0.18, 9.9)
	if taxPrice != 18 {
		t.Fatalf("expected tax 18, got %v", taxPrice)
	}
	if shippingPrice != 9.9 {
		t.Fatalf("expected shipping 9.9, got %v", shippingPrice)
	}

	// Tax is rounded to cents.
	taxPrice, _ = computeOrderCharges(33.33, 0.18, 0)
	if taxPrice != 6 {
		t.Fatalf("expected tax 6.00 for 33.33 at 18%%, got %v", taxPrice)
	}

	taxPrice, shippingPrice = computeOrderCharges(50, 0, 0)
	if taxPrice != 0 || shippingPrice != 0 {
		t.Fatalf("expected zero charges without configured rates, got %v/%v", taxPrice, shippingPrice)
	}
}

func TestCheckClaimedAmount(t *testing.T) {
	// A zero claim defers to the server computation.
	if err := checkClaimedAmount("taxPrice", 0, 18); err != nil {
		t.Fatalf("zero claim must pass, got %v", err)
	}

	if err := checkClaimedAmount("itemsPrice", 30, 30.005); err != nil {
		t.Fatalf("claim within tolerance must pass, got %v", err)
	}

	err := checkClaimedAmount("shippingPrice", 5, 9.9)
	var mismatch priceMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected priceMismatchError, got %v", err)
	}
	if mismatch.Field != "shippingPrice" || mismatch.Claimed != 5 || mismatch.Computed != 9.9 {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestPriceToleranceAbsorbsFloatNoise(t *testing.T) {
	computed := 0.1 + 0.2
	claimed := 0.3

	if math.Abs(computed-claimed) > priceTolerance {
		t.Fatalf("tolerance %v should absorb float rounding noise", priceTolerance)
	}
	if math.Abs(30.0-30.5) <= priceTolerance {
		t.Fatal("tolerance must still catch a real mismatch")
	}
}
