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
	"go.mongodb.org/mongo-driver/mongo/options"

	"wearmart/internal/logger"
	"wearmart/internal/models"
)

type productImageRequest struct {
	PublicID string `json:"publicId" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

type sizeStockRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"`
}

type productCreateRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description" binding:"required"`
	Price       float64               `json:"price" binding:"required,gt=0"`
	Category    string                `json:"category" binding:"required"`
	Seller      string                `json:"seller" binding:"required"`
	Images      []productImageRequest `json:"images"`
	Stock       int                   `json:"stock" binding:"gte=0"`
	Sizes       []sizeStockRequest    `json:"sizes"`
	Colors      []string              `json:"colors"`
}

type productUpdateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Price       *float64              `json:"price" binding:"omitempty,gt=0"`
	Category    *string               `json:"category"`
	Seller      *string               `json:"seller"`
	Images      []productImageRequest `json:"images"`
	Stock       *int                  `json:"stock" binding:"omitempty,gte=0"`
	Sizes       []sizeStockRequest    `json:"sizes"`
	Colors      []string              `json:"colors"`
}

// GetAllProducts lists the full catalog for the admin panel.
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, findNewestFirst())
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		respondList(c, len(products), products)
	}
}

// CreateProduct registers a catalog entry. Rating aggregates start at zero
// and are only ever written by review mutations.
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		product := models.Product{
			Name:         strings.TrimSpace(req.Name),
			Description:  strings.TrimSpace(req.Description),
			Price:        req.Price,
			Category:     strings.TrimSpace(req.Category),
			Seller:       strings.TrimSpace(req.Seller),
			Images:       make([]models.ProductImage, 0, len(req.Images)),
			Stock:        req.Stock,
			Colors:       models.StringList(req.Colors),
			Ratings:      0,
			NumOfReviews: 0,
			CreatedAt:    time.Now(),
		}
		for _, image := range req.Images {
			product.Images = append(product.Images, models.ProductImage(image))
		}
		for _, size := range req.Sizes {
			product.Sizes = append(product.Sizes, models.SizeStock{
				Size:     normalizeSize(size.Size),
				Quantity: size.Quantity,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}
		product.InStock = productHasStock(product)

		logger.L().Infow("product created", "productId", product.ID.Hex(), "name", product.Name)
		respondData(c, http.StatusCreated, product)
	}
}

// UpdateProduct patches catalog fields. Ratings and numOfReviews are not
// updatable here.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			update["price"] = *req.Price
		}
		if req.Category != nil {
			update["category"] = strings.TrimSpace(*req.Category)
		}
		if req.Seller != nil {
			update["seller"] = strings.TrimSpace(*req.Seller)
		}
		if req.Images != nil {
			images := make([]models.ProductImage, 0, len(req.Images))
			for _, image := range req.Images {
				images = append(images, models.ProductImage(image))
			}
			update["images"] = images
		}
		if req.Stock != nil {
			update["stock"] = *req.Stock
		}
		if req.Sizes != nil {
			sizes := make([]models.SizeStock, 0, len(req.Sizes))
			for _, size := range req.Sizes {
				sizes = append(sizes, models.SizeStock{
					Size:     normalizeSize(size.Size),
					Quantity: size.Quantity,
				})
			}
			update["sizes"] = sizes
		}
		if req.Colors != nil {
			update["colors"] = models.StringList(req.Colors)
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Product
		err = db.Collection("products").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": productID},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		updated.InStock = productHasStock(updated)

		respondData(c, http.StatusOK, updated)
	}
}

// DeleteProduct removes a catalog entry and its reviews. Existing orders keep
// their snapshots.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}

		// Best effort: orphaned reviews carry no aggregate once the product
		// is gone. The primary delete already succeeded, so only log here.
		if _, err := db.Collection("reviews").DeleteMany(ctx, bson.M{"productId": productID}); err != nil {
			logger.L().Warnw("review cleanup failed after product delete", "productId", productID.Hex(), "error", err)
		}

		respondMessage(c, http.StatusOK, "product deleted")
	}
}
