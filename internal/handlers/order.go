package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"wearmart/internal/config"
	"wearmart/internal/logger"
	"wearmart/internal/models"
)

// priceTolerance absorbs float rounding between the client's itemsPrice and
// the server-side recomputation from cart snapshots.
const priceTolerance = 0.01

type shippingInfoRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
}

type createOrderRequest struct {
	ShippingInfo  shippingInfoRequest `json:"shippingInfo" binding:"required"`
	ItemsPrice    float64             `json:"itemsPrice"`
	TaxPrice      float64             `json:"taxPrice"`
	ShippingPrice float64             `json:"shippingPrice"`
	Coupon        string              `json:"coupon"`
}

type payOrderRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type applyCouponRequest struct {
	CouponCode string  `json:"couponCode" binding:"required"`
	OrderTotal float64 `json:"orderTotal" binding:"required,gt=0"`
}

// CreateOrder is the checkout workflow: load cart, price, validate coupon,
// then atomically snapshot the cart into an order, decrement stock and drop
// the cart. Any stock failure aborts the whole transaction.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": p.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
			respondError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// All amounts are recomputed server side from the cart snapshots
		// and the configured rates. Client-claimed amounts are
		// cross-checked; a mismatch is a validation failure, not silently
		// corrected.
		itemsPrice, _ := recalculateTotals(cart.Items)
		taxPrice, shippingPrice := computeOrderCharges(itemsPrice, config.AppEnv.TaxRate, config.AppEnv.ShippingPrice)

		for _, claim := range []struct {
			field    string
			claimed  float64
			computed float64
		}{
			{"itemsPrice", req.ItemsPrice, itemsPrice},
			{"taxPrice", req.TaxPrice, taxPrice},
			{"shippingPrice", req.ShippingPrice, shippingPrice},
		} {
			if err := checkClaimedAmount(claim.field, claim.claimed, claim.computed); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error())
				return
			}
		}

		totalPrice := itemsPrice + taxPrice + shippingPrice
		discount := 0.0
		var couponID *primitive.ObjectID
		couponCode := ""

		if code := normalizeCouponCode(req.Coupon); code != "" {
			var coupon models.Coupon
			err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, invalidCouponError{Code: code}.Error())
				return
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			if err := validateCoupon(coupon, totalPrice, time.Now()); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error())
				return
			}

			discount = computeDiscount(coupon)
			totalPrice = applyDiscount(totalPrice, coupon)
			couponID = &coupon.ID
			couponCode = coupon.Code
		}

		order := models.Order{
			UserID:        p.ID,
			ShippingInfo:  models.ShippingInfo(req.ShippingInfo),
			OrderItems:    snapshotCartItems(cart.Items),
			ItemsPrice:    itemsPrice,
			TaxPrice:      taxPrice,
			ShippingPrice: shippingPrice,
			Discount:      discount,
			TotalPrice:    totalPrice,
			CouponID:      couponID,
			CouponCode:    couponCode,
			OrderStatus:   models.OrderStatusPlaced,
			CreatedAt:     time.Now(),
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		reserver := mongoStockReserver{products: db.Collection("products")}

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if err := reserveOrderStock(sessCtx, reserver, order.OrderItems); err != nil {
				return nil, err
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}

			if _, err := db.Collection("carts").DeleteOne(sessCtx, bson.M{"_id": cart.ID}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			var stockErr insufficientStockError
			if errors.As(err, &stockErr) {
				respondError(c, http.StatusBadRequest, route, stockErr.Error())
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				respondError(c, http.StatusBadRequest, route, notFoundErr.Error())
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.ID = orderID
		logger.L().Infow("order created", "orderId", orderID.Hex(), "userId", p.ID.Hex(), "total", totalPrice)
		respondData(c, http.StatusCreated, order)
	}
}

// GetOrder returns one order to its owner or to an admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !p.owns(order.UserID) && !p.isAdmin() {
			respondError(c, http.StatusUnauthorized, route, "not authorized to access this order")
			return
		}

		respondData(c, http.StatusOK, order)
	}
}

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": p.ID}, findNewestFirst())
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		respondList(c, len(orders), orders)
	}
}

// PayOrder records the external payment result on the order. It deliberately
// does not touch OrderStatus; payment and delivery are tracked independently.
func PayOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id/pay"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req payOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !p.owns(order.UserID) {
			respondError(c, http.StatusUnauthorized, route, "not authorized to update this order")
			return
		}

		now := time.Now()
		update := bson.M{"$set": bson.M{
			"paymentInfo": models.PaymentInfo{
				ID:     strings.TrimSpace(req.ID),
				Status: strings.TrimSpace(req.Status),
			},
			"isPaid": true,
			"paidAt": now,
		}}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, update); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.PaymentInfo = &models.PaymentInfo{ID: strings.TrimSpace(req.ID), Status: strings.TrimSpace(req.Status)}
		order.IsPaid = true
		order.PaidAt = &now

		logger.L().Infow("order paid", "orderId", orderID.Hex(), "paymentStatus", order.PaymentInfo.Status)
		respondData(c, http.StatusOK, order)
	}
}

// ApplyCoupon previews a coupon against a prospective total without touching
// any order or cart state.
func ApplyCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/apply-coupon"
		defer handlePanic(c, route)

		var req applyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		code := normalizeCouponCode(req.CouponCode)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusBadRequest, route, invalidCouponError{Code: code}.Error())
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := validateCoupon(coupon, req.OrderTotal, time.Now()); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		discount := computeDiscount(coupon)
		respondData(c, http.StatusOK, gin.H{
			"coupon":   coupon.Code,
			"discount": discount,
			"newTotal": req.OrderTotal - discount,
		})
	}
}

// computeOrderCharges derives tax and shipping from the configured rates. Tax
// is rounded to cents; shipping is a flat configured amount.
func computeOrderCharges(itemsPrice, taxRate, flatShipping float64) (taxPrice, shippingPrice float64) {
	return math.Round(itemsPrice*taxRate*100) / 100, flatShipping
}

// checkClaimedAmount compares a client-claimed amount against the server
// computation. A zero claim means the client defers to the server.
func checkClaimedAmount(field string, claimed, computed float64) error {
	if claimed != 0 && math.Abs(claimed-computed) > priceTolerance {
		return priceMismatchError{Field: field, Claimed: claimed, Computed: computed}
	}
	return nil
}

// snapshotCartItems copies cart lines into immutable order lines. Later
// product or cart edits must never reach a placed order.
func snapshotCartItems(items []models.CartItem) []models.OrderItem {
	snapshot := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Image:     item.Image,
		})
	}
	return snapshot
}
