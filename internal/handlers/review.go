package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"wearmart/internal/logger"
	"wearmart/internal/models"
)

type createReviewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"required"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

// CreateReview adds a review for a purchased product. A user may review a
// product only after a delivered order contains it, and only once.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /reviews"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		gate := mongoReviewGate{db: db}
		if err := gate.check(ctx, p.ID, productID); err != nil {
			status := reviewGateStatus(err)
			if status == http.StatusInternalServerError {
				respondError(c, status, route, "db error")
				return
			}
			respondError(c, status, route, err.Error())
			return
		}

		var user models.User
		userName := ""
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&user); err == nil {
			userName = user.Name
		}

		now := time.Now()
		review := models.Review{
			ProductID: productID,
			UserID:    p.ID,
			UserName:  userName,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: now,
			UpdatedAt: now,
		}

		res, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			// The unique (userId, productId) index backstops the gate.
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, route, duplicateReviewError{}.Error())
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			review.ID = id
		}

		if err := recomputeProductRating(ctx, db, productID); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logger.L().Infow("review created", "productId", productID.Hex(), "userId", p.ID.Hex(), "rating", req.Rating)
		respondData(c, http.StatusCreated, review)
	}
}

// UpdateReview edits the caller's own review and refreshes the aggregate.
func UpdateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /reviews/:id"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !p.owns(review.UserID) {
			respondError(c, http.StatusUnauthorized, route, "not authorized to update this review")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Rating != nil {
			set["rating"] = *req.Rating
			review.Rating = *req.Rating
		}
		if req.Comment != nil {
			comment := strings.TrimSpace(*req.Comment)
			if comment == "" {
				respondError(c, http.StatusBadRequest, route, "comment cannot be empty")
				return
			}
			set["comment"] = comment
			review.Comment = comment
		}
		if len(set) == 1 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		if _, err := db.Collection("reviews").UpdateByID(ctx, reviewID, bson.M{"$set": set}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := recomputeProductRating(ctx, db, review.ProductID); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, review)
	}
}

// DeleteReview removes a review; owners may delete their own, admins any.
func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /reviews/:id"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !p.owns(review.UserID) && !p.isAdmin() {
			respondError(c, http.StatusUnauthorized, route, "not authorized to delete this review")
			return
		}

		if _, err := db.Collection("reviews").DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := recomputeProductRating(ctx, db, review.ProductID); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logger.L().Infow("review deleted", "reviewId", reviewID.Hex(), "by", p.ID.Hex())
		respondData(c, http.StatusOK, gin.H{})
	}
}

// GetReviews lists reviews, optionally filtered by product.
func GetReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reviews"
		defer handlePanic(c, route)

		filter := bson.M{}
		if productParam := strings.TrimSpace(c.Query("productId")); productParam != "" {
			productID, err := primitive.ObjectIDFromHex(productParam)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}
			filter["productId"] = productID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("reviews").Find(ctx, filter, findNewestFirst())
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		respondList(c, len(reviews), reviews)
	}
}

// GetReview returns one review by id.
func GetReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reviews/:id"
		defer handlePanic(c, route)

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, review)
	}
}

// recomputeProductRating rebuilds the product's rating aggregate from the
// reviews collection. Deleting the last review resets the mean to 0.
func recomputeProductRating(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) error {
	cursor, err := db.Collection("reviews").Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	rating, count := summarizeRatings(reviews)

	_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{"$set": bson.M{
		"ratings":      rating,
		"numOfReviews": count,
	}})
	return err
}
