package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"wearmart/internal/models"
)

// stockReserver decrements product stock if and only if enough is available.
// The conditional update is the guard against concurrent checkouts: two
// requests racing for the last unit resolve to one success and one
// insufficientStockError, never negative stock.
type stockReserver interface {
	reserve(ctx context.Context, productID primitive.ObjectID, size string, quantity int) error
}

type mongoStockReserver struct {
	products *mongo.Collection
}

func (r mongoStockReserver) reserve(ctx context.Context, productID primitive.ObjectID, size string, quantity int) error {
	var product models.Product
	err := r.products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return productNotFoundError{ProductID: productID.Hex()}
	}
	if err != nil {
		return err
	}

	available := availableStock(product, size)
	if available < quantity {
		return insufficientStockError{
			ProductID: productID.Hex(),
			Size:      size,
			Available: available,
			Requested: quantity,
		}
	}

	var filter, update bson.M
	if size != "" {
		filter = bson.M{
			"_id": productID,
			"sizes": bson.M{"$elemMatch": bson.M{
				"size":     size,
				"quantity": bson.M{"$gte": quantity},
			}},
		}
		update = bson.M{"$inc": bson.M{"sizes.$.quantity": -quantity}}
	} else {
		filter = bson.M{
			"_id":   productID,
			"stock": bson.M{"$gte": quantity},
		}
		update = bson.M{"$inc": bson.M{"stock": -quantity}}
	}

	res, err := r.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Lost the race between the read above and the decrement.
		return insufficientStockError{
			ProductID: productID.Hex(),
			Size:      size,
			Available: available,
			Requested: quantity,
		}
	}
	return nil
}

// reserveOrderStock walks the order lines and reserves each one. The first
// failure aborts; the caller runs this inside a transaction so earlier
// decrements roll back.
func reserveOrderStock(ctx context.Context, r stockReserver, items []models.OrderItem) error {
	for _, item := range items {
		if err := r.reserve(ctx, item.ProductID, item.Size, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
