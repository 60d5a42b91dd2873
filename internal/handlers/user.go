package handlers

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"wearmart/internal/models"
)

type addressRequest struct {
	Title     string `json:"title" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
	City      string `json:"city"`
	Note      string `json:"note"`
	IsDefault bool   `json:"isDefault"`
}

// GetUserAddresses lists the caller's saved shipping addresses.
func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/addresses"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		if user.Addresses == nil {
			user.Addresses = []models.Address{}
		}
		respondList(c, len(user.Addresses), user.Addresses)
	}
}

// CreateUserAddress appends an address; the first one (or an explicit
// default) becomes the default.
func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		address := models.Address{
			ID:        newAddressID(),
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			City:      strings.TrimSpace(req.City),
			Note:      strings.TrimSpace(req.Note),
			IsDefault: req.IsDefault || len(user.Addresses) == 0,
		}

		addresses := user.Addresses
		if address.IsDefault {
			for i := range addresses {
				addresses[i].IsDefault = false
			}
		}
		addresses = append(addresses, address)

		if err := saveAddresses(ctx, db, p, addresses); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusCreated, address)
	}
}

// UpdateUserAddress edits one saved address by its id.
func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:id"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		idx := -1
		for i, address := range user.Addresses {
			if address.ID == addressID {
				idx = i
				break
			}
		}
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "address not found")
			return
		}

		addresses := user.Addresses
		if req.IsDefault {
			for i := range addresses {
				addresses[i].IsDefault = false
			}
		}
		addresses[idx] = models.Address{
			ID:        addressID,
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			City:      strings.TrimSpace(req.City),
			Note:      strings.TrimSpace(req.Note),
			IsDefault: req.IsDefault,
		}

		if err := saveAddresses(ctx, db, p, addresses); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, addresses[idx])
	}
}

// DeleteUserAddress removes one saved address by its id.
func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:id"
		defer handlePanic(c, route)

		p, ok := principalFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		addresses := make([]models.Address, 0, len(user.Addresses))
		found := false
		for _, address := range user.Addresses {
			if address.ID == addressID {
				found = true
				continue
			}
			addresses = append(addresses, address)
		}
		if !found {
			respondError(c, http.StatusNotFound, route, "address not found")
			return
		}

		if err := saveAddresses(ctx, db, p, addresses); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondMessage(c, http.StatusOK, "address deleted")
	}
}

func saveAddresses(ctx context.Context, db *mongo.Database, p principal, addresses []models.Address) error {
	_, err := db.Collection("users").UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"addresses": addresses,
		"updatedAt": time.Now(),
	}})
	return err
}

func newAddressID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("addr-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
