package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"wearmart/internal/models"
)

// reviewGate decides whether a user may review a product. A review needs a
// delivered order containing the product, and only one review per
// (user, product) pair may exist.
type reviewGate interface {
	check(ctx context.Context, userID, productID primitive.ObjectID) error
}

// validateReviewEligibility is the pure decision over the gathered facts.
// Unknown product wins over the purchase gate, which wins over duplication.
func validateReviewEligibility(productExists bool, deliveredOrders, existingReviews int64) error {
	if !productExists {
		return productNotFoundError{}
	}
	if deliveredOrders == 0 {
		return notPurchasedError{}
	}
	if existingReviews > 0 {
		return duplicateReviewError{}
	}
	return nil
}

type mongoReviewGate struct {
	db *mongo.Database
}

func (g mongoReviewGate) check(ctx context.Context, userID, productID primitive.ObjectID) error {
	products, err := g.db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return err
	}

	delivered, err := g.db.Collection("orders").CountDocuments(ctx, bson.M{
		"userId":               userID,
		"orderStatus":          models.OrderStatusDelivered,
		"orderItems.productId": productID,
	})
	if err != nil {
		return err
	}

	existing, err := g.db.Collection("reviews").CountDocuments(ctx, bson.M{
		"userId":    userID,
		"productId": productID,
	})
	if err != nil {
		return err
	}

	return validateReviewEligibility(products > 0, delivered, existing)
}

// reviewGateStatus maps a gate refusal to its response status.
func reviewGateStatus(err error) int {
	switch err.(type) {
	case productNotFoundError:
		return http.StatusNotFound
	case notPurchasedError:
		return http.StatusBadRequest
	case duplicateReviewError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
