package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (product, size) line in a cart. Name, Price and Image are
// snapshots taken when the line was added.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// Cart holds the open shopping cart for one user. TotalPrice and
// TotalQuantity are caches recomputed after every line mutation; they must
// always equal the sums over Items.
type Cart struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Items         []CartItem         `bson:"items" json:"items"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	TotalQuantity int                `bson:"totalQuantity" json:"totalQuantity"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
