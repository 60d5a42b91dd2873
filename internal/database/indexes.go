package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wearmart/internal/logger"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		logger.L().Errorw("user index creation failed", "index", "email_unique", "error", err)
		return err
	}
	return nil
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One open cart per user.
	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	_, err := db.Collection("carts").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		logger.L().Errorw("cart index creation failed", "index", "userId_unique", "error", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	_, err := db.Collection("orders").Indexes().CreateOne(ctx, userIDIndex)
	if err != nil {
		logger.L().Errorw("order index creation failed", "index", "userId_index", "error", err)
		return err
	}
	return nil
}

func EnsureCouponIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	_, err := db.Collection("coupons").Indexes().CreateOne(ctx, codeIndex)
	if err != nil {
		logger.L().Errorw("coupon index creation failed", "index", "code_unique", "error", err)
		return err
	}
	return nil
}

func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Backstop for the one-review-per-(user, product) invariant.
	pairIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "productId", Value: 1},
		},
		Options: options.Index().
			SetName("user_product_unique").
			SetUnique(true),
	}

	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, pairIndex)
	if err != nil {
		logger.L().Errorw("review index creation failed", "index", "user_product_unique", "error", err)
		return err
	}
	return nil
}
