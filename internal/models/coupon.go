package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a flat-amount discount code. Discount and MaxAmount are both
// absolute amounts; the effective discount is min(Discount, MaxAmount).
// Once an order references a coupon its recorded discount never changes.
type Coupon struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"`
	Discount  float64            `bson:"discount" json:"discount"`
	MinAmount float64            `bson:"minAmount" json:"minAmount"`
	MaxAmount float64            `bson:"maxAmount" json:"maxAmount"`
	Expiry    time.Time          `bson:"expiry" json:"expiry"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
