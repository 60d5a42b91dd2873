package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"wearmart/internal/logger"
)

// principal is the authenticated caller, extracted from the auth middleware.
// Ownership and role checks go through this instead of ad hoc claim lookups.
type principal struct {
	ID   primitive.ObjectID
	Role string
}

func (p principal) isAdmin() bool {
	return p.Role == "admin"
}

// owns reports whether the principal may act on a resource owned by ownerID.
func (p principal) owns(ownerID primitive.ObjectID) bool {
	return p.ID == ownerID
}

func principalFromContext(c *gin.Context) (principal, bool) {
	userID, ok := c.Get("userId")
	if !ok {
		return principal{}, false
	}
	id, ok := userID.(primitive.ObjectID)
	if !ok {
		return principal{}, false
	}
	role := c.GetString("role")
	if role == "" {
		role = "user"
	}
	return principal{ID: id, Role: role}, true
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logger.L().Errorw("panic recovered", "route", route, "panic", r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

// respondError writes the uniform failure envelope.
func respondError(c *gin.Context, status int, route string, message string) {
	logger.L().Warnw("request failed", "route", route, "status", status, "message", message)
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondData writes the uniform success envelope around a single entity.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondList writes the uniform success envelope around a collection.
func respondList(c *gin.Context, count int, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

// respondMessage writes the uniform success envelope with only a message.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}
