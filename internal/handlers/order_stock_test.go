package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"wearmart/internal/models"
)

// memoryStockReserver mimics the conditional decrement against an in-memory
// stock table so the reservation semantics can be exercised without a
// database. The mutex plays the role of the database's atomic update.
type memoryStockReserver struct {
	mu    sync.Mutex
	stock map[primitive.ObjectID]int
}

func newMemoryStockReserver() *memoryStockReserver {
	return &memoryStockReserver{stock: make(map[primitive.ObjectID]int)}
}

func (r *memoryStockReserver) reserve(ctx context.Context, productID primitive.ObjectID, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	available, ok := r.stock[productID]
	if !ok {
		return productNotFoundError{ProductID: productID.Hex()}
	}
	if available < quantity {
		return insufficientStockError{
			ProductID: productID.Hex(),
			Size:      size,
			Available: available,
			Requested: quantity,
		}
	}
	r.stock[productID] = available - quantity
	return nil
}

func (r *memoryStockReserver) remaining(productID primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[productID]
}

func TestReserveOrderStockDecrements(t *testing.T) {
	productID := primitive.NewObjectID()
	reserver := newMemoryStockReserver()
	reserver.stock[productID] = 10

	items := []models.OrderItem{{ProductID: productID, Quantity: 3}}
	if err := reserveOrderStock(context.Background(), reserver, items); err != nil {
		t.Fatalf("expected reservation to succeed, got %v", err)
	}
	if got := reserver.remaining(productID); got != 7 {
		t.Fatalf("expected 7 remaining, got %d", got)
	}
}

func TestReserveOrderStockInsufficient(t *testing.T) {
	productID := primitive.NewObjectID()
	reserver := newMemoryStockReserver()
	reserver.stock[productID] = 2

	items := []models.OrderItem{{ProductID: productID, Quantity: 3}}
	err := reserveOrderStock(context.Background(), reserver, items)
	var insufficient insufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 || insufficient.Requested != 3 {
		t.Fatalf("unexpected error detail: %+v", insufficient)
	}
	if got := reserver.remaining(productID); got != 2 {
		t.Fatalf("failed reservation must not decrement, got %d", got)
	}
}

func TestReserveOrderStockUnknownProduct(t *testing.T) {
	reserver := newMemoryStockReserver()

	items := []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}
	err := reserveOrderStock(context.Background(), reserver, items)
	var notFound productNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected productNotFoundError, got %v", err)
	}
}

func TestReserveOrderStockStopsAtFirstFailure(t *testing.T) {
	inStock := primitive.NewObjectID()
	outOfStock := primitive.NewObjectID()
	untouched := primitive.NewObjectID()

	reserver := newMemoryStockReserver()
	reserver.stock[inStock] = 5
	reserver.stock[outOfStock] = 0
	reserver.stock[untouched] = 5

	items := []models.OrderItem{
		{ProductID: inStock, Quantity: 1},
		{ProductID: outOfStock, Quantity: 1},
		{ProductID: untouched, Quantity: 1},
	}

	err := reserveOrderStock(context.Background(), reserver, items)
	var insufficient insufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficientStockError, got %v", err)
	}
	// Lines after the failing one are never touched; the caller's
	// transaction rolls back the ones before it.
	if got := reserver.remaining(untouched); got != 5 {
		t.Fatalf("line after the failure was reserved, remaining %d", got)
	}
}

// Two checkouts racing for the last unit: exactly one wins and stock never
// goes negative.
func TestConcurrentReservationsLastUnit(t *testing.T) {
	productID := primitive.NewObjectID()
	reserver := newMemoryStockReserver()
	reserver.stock[productID] = 1

	const attempts = 2
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items := []models.OrderItem{{ProductID: productID, Quantity: 1}}
			errs <- reserveOrderStock(context.Background(), reserver, items)
		}()
	}
	wg.Wait()
	close(errs)

	successes, failures := 0, 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var insufficient insufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected error kind: %v", err)
		}
		failures++
	}

	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d failures", successes, failures)
	}
	if got := reserver.remaining(productID); got != 0 {
		t.Fatalf("expected stock 0 after the race, got %d", got)
	}
}

func TestConcurrentReservationsManyCallers(t *testing.T) {
	productID := primitive.NewObjectID()
	reserver := newMemoryStockReserver()
	reserver.stock[productID] = 5

	const attempts = 20
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- reserver.reserve(context.Background(), productID, "", 1)
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		}
	}

	if successes != 5 {
		t.Fatalf("expected exactly 5 successful reservations, got %d", successes)
	}
	if got := reserver.remaining(productID); got < 0 {
		t.Fatalf("stock went negative: %d", got)
	}
	if got := reserver.remaining(productID); got != 0 {
		t.Fatalf("expected stock drained to 0, got %d", got)
	}
}
