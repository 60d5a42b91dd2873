package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wearmart/internal/models"
)

type couponCreateRequest struct {
	Code      string    `json:"code" binding:"required"`
	Discount  float64   `json:"discount" binding:"required,gt=0"`
	MinAmount float64   `json:"minAmount" binding:"gte=0"`
	MaxAmount float64   `json:"maxAmount" binding:"required,gt=0"`
	Expiry    time.Time `json:"expiry" binding:"required"`
	IsActive  *bool     `json:"isActive"`
}

type couponUpdateRequest struct {
	Discount  *float64   `json:"discount" binding:"omitempty,gt=0"`
	MinAmount *float64   `json:"minAmount" binding:"omitempty,gte=0"`
	MaxAmount *float64   `json:"maxAmount" binding:"omitempty,gt=0"`
	Expiry    *time.Time `json:"expiry"`
	IsActive  *bool      `json:"isActive"`
}

// GetCoupons lists all coupons for the admin panel.
func GetCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, findNewestFirst())
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		respondList(c, len(coupons), coupons)
	}
}

// GetCoupon returns one coupon by id.
func GetCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err = db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, coupon)
	}
}

// CreateCoupon registers a new discount code. Codes are stored uppercase and
// must be unique.
func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req couponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		code := normalizeCouponCode(req.Code)
		if code == "" {
			respondError(c, http.StatusBadRequest, route, "code is required")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		coupon := models.Coupon{
			Code:      code,
			Discount:  req.Discount,
			MinAmount: req.MinAmount,
			MaxAmount: req.MaxAmount,
			Expiry:    req.Expiry,
			IsActive:  isActive,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, route, "coupon code already exists")
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			coupon.ID = id
		}

		respondData(c, http.StatusCreated, coupon)
	}
}

// UpdateCoupon patches coupon fields. The code itself is immutable so orders
// referencing it keep meaning the same discount.
func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req couponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		update := bson.M{}
		if req.Discount != nil {
			update["discount"] = *req.Discount
		}
		if req.MinAmount != nil {
			update["minAmount"] = *req.MinAmount
		}
		if req.MaxAmount != nil {
			update["maxAmount"] = *req.MaxAmount
		}
		if req.Expiry != nil {
			update["expiry"] = *req.Expiry
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Coupon
		err = db.Collection("coupons").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": couponID},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

// DeleteCoupon removes a coupon. Orders keep their recorded discount and
// code snapshot, so history is unaffected.
func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("coupons").DeleteOne(ctx, bson.M{"_id": couponID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		respondData(c, http.StatusOK, gin.H{})
	}
}

// CheckCoupon is the public validity probe for a code.
func CheckCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /coupons/check/:code"
		defer handlePanic(c, route)

		code := normalizeCouponCode(c.Param("code"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{
			"code":     code,
			"isActive": true,
			"expiry":   bson.M{"$gt": time.Now()},
		}).Decode(&coupon)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusBadRequest, route, invalidCouponError{Code: code}.Error())
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, coupon)
	}
}
