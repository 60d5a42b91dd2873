package handlers

import (
	"context"
	"errors"
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

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAllOrders lists every order for the admin panel, newest first.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findNewestFirst())
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

// UpdateOrderStatus moves an order along the fulfillment states. Delivered is
// terminal; updating a delivered order is refused and deliveredAt is left
// untouched.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		next := strings.TrimSpace(req.Status)

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

		if err := validateStatusTransition(order.OrderStatus, next); err != nil {
			var delivered alreadyDeliveredError
			if errors.As(err, &delivered) {
				respondError(c, http.StatusConflict, route, delivered.Error())
				return
			}
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		set := bson.M{"orderStatus": next}
		if next == models.OrderStatusDelivered {
			now := time.Now()
			set["deliveredAt"] = now
			order.DeliveredAt = &now
		}
		order.OrderStatus = next

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": set}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logger.L().Infow("order status updated", "orderId", orderID.Hex(), "status", next)
		respondData(c, http.StatusOK, order)
	}
}

// DeleteOrder removes an order document entirely.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}

		respondMessage(c, http.StatusOK, "order deleted")
	}
}
