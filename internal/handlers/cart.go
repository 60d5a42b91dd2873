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

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Size      string `json:"size"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// cartItemView is a cart line joined with the product's current state for
// display. Snapshot fields stay as captured at add time.
type cartItemView struct {
	models.CartItem
	Product *models.Product `json:"product,omitempty"`
}

type cartView struct {
	ID            primitive.ObjectID `json:"id"`
	UserID        primitive.ObjectID `json:"userId"`
	Items         []cartItemView     `json:"items"`
	TotalPrice    float64            `json:"totalPrice"`
	TotalQuantity int                `json:"totalQuantity"`
}

// AddToCart appends a line or merges into an existing (product, size) line,
// re-checking stock against the combined quantity.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}
		size := normalizeSize(req.Size)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if len(product.Sizes) > 0 && size == "" {
			respondError(c, http.StatusBadRequest, route, "size is required for this product")
			return
		}

		available := availableStock(product, size)
		if available < req.Quantity {
			respondError(c, http.StatusBadRequest, route, insufficientStockError{
				ProductID: productID.Hex(),
				Size:      size,
				Available: available,
				Requested: req.Quantity,
			}.Error())
			return
		}

		now := time.Now()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": p.ID}).Decode(&cart)
		switch {
		case err == mongo.ErrNoDocuments:
			cart = models.Cart{
				UserID:    p.ID,
				Items:     []models.CartItem{},
				CreatedAt: now,
			}
		case err != nil:
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if idx := findCartLine(cart.Items, productID, size); idx >= 0 {
			combined := cart.Items[idx].Quantity + req.Quantity
			if available < combined {
				respondError(c, http.StatusBadRequest, route, insufficientStockError{
					ProductID: productID.Hex(),
					Size:      size,
					Available: available,
					Requested: combined,
				}.Error())
				return
			}
			cart.Items[idx].Quantity = combined
		} else {
			cart.Items = append(cart.Items, models.CartItem{
				ID:        primitive.NewObjectID(),
				ProductID: productID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  req.Quantity,
				Size:      size,
				Image:     primaryImage(product),
			})
		}

		cart.TotalPrice, cart.TotalQuantity = recalculateTotals(cart.Items)
		cart.UpdatedAt = now

		if err := saveCart(ctx, db, &cart); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logger.L().Infow("cart line added", "userId", p.ID.Hex(), "productId", productID.Hex(), "quantity", req.Quantity)
		respondData(c, http.StatusOK, cart)
	}
}

// GetCart returns the user's cart with each line joined against the current
// product document. A user with no cart gets a 404; the cart only exists
// between the first add and checkout or clear.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": p.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "cart is empty")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		view := cartView{
			ID:            cart.ID,
			UserID:        cart.UserID,
			Items:         make([]cartItemView, 0, len(cart.Items)),
			TotalPrice:    cart.TotalPrice,
			TotalQuantity: cart.TotalQuantity,
		}

		for _, item := range cart.Items {
			entry := cartItemView{CartItem: item}

			var product models.Product
			if err := db.Collection("products").FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err == nil {
				product.InStock = availableStock(product, item.Size) > 0
				entry.Product = &product
			}

			view.Items = append(view.Items, entry)
		}

		respondData(c, http.StatusOK, view)
	}
}

// UpdateCartItem sets a new quantity for one line after re-checking live
// product stock.
func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/update/:itemId"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": p.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "cart not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		idx := findCartItem(cart.Items, itemID)
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "item not found in cart")
			return
		}
		item := cart.Items[idx]

		// Stock is checked against the live product, not the snapshot.
		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		available := availableStock(product, item.Size)
		if available < req.Quantity {
			respondError(c, http.StatusBadRequest, route, insufficientStockError{
				ProductID: item.ProductID.Hex(),
				Size:      item.Size,
				Available: available,
				Requested: req.Quantity,
			}.Error())
			return
		}

		cart.Items[idx].Quantity = req.Quantity
		cart.TotalPrice, cart.TotalQuantity = recalculateTotals(cart.Items)
		cart.UpdatedAt = time.Now()

		if err := saveCart(ctx, db, &cart); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, cart)
	}
}

// RemoveCartItem deletes one line and recomputes the totals.
func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/remove/:itemId"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": p.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "cart not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		idx := findCartItem(cart.Items, itemID)
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "item not found in cart")
			return
		}

		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		cart.TotalPrice, cart.TotalQuantity = recalculateTotals(cart.Items)
		cart.UpdatedAt = time.Now()

		if err := saveCart(ctx, db, &cart); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, cart)
	}
}

// ClearCart deletes the cart document entirely.
func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/clear"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"userId": p.ID}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondMessage(c, http.StatusOK, "cart cleared successfully")
	}
}

// saveCart inserts or replaces the user's cart document.
func saveCart(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	if cart.ID.IsZero() {
		res, err := db.Collection("carts").InsertOne(ctx, cart)
		if err != nil {
			return err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			cart.ID = id
		}
		return nil
	}

	_, err := db.Collection("carts").ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	return err
}
