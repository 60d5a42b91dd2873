package handlers

import (
	"testing"

	"wearmart/internal/models"
)

func TestProductHasStock(t *testing.T) {
	if productHasStock(models.Product{}) {
		t.Fatal("empty product must report no stock")
	}
	if !productHasStock(models.Product{Stock: 3}) {
		t.Fatal("flat stock must count")
	}
	if !productHasStock(models.Product{Sizes: []models.SizeStock{{Size: "M", Quantity: 1}}}) {
		t.Fatal("per size stock must count")
	}
	if productHasStock(models.Product{Sizes: []models.SizeStock{{Size: "M", Quantity: 0}}}) {
		t.Fatal("zero quantity sizes must not count")
	}
}
