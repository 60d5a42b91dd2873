package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is a single hosted image reference.
type ProductImage struct {
	PublicID string `bson:"publicId" json:"publicId"`
	URL      string `bson:"url" json:"url"`
}

// SizeStock tracks remaining quantity for one size of a product.
type SizeStock struct {
	Size     string `bson:"size" json:"size"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Product is the persisted catalog document. Ratings and NumOfReviews are a
// denormalized aggregate over the reviews collection and are only written by
// the rating recompute path.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	Category     string             `bson:"category" json:"category"`
	Seller       string             `bson:"seller,omitempty" json:"seller,omitempty"`
	Images       []ProductImage     `bson:"images" json:"images"`
	Stock        int                `bson:"stock" json:"stock"`
	Sizes        []SizeStock        `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Colors       StringList         `bson:"colors,omitempty" json:"colors,omitempty"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	InStock      bool               `bson:"-" json:"inStock"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
