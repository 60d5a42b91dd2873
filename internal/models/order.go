package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. Delivery is terminal.
const (
	OrderStatusPlaced     = "Placed"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
)

// OrderItem is an immutable copy of a cart line taken at checkout. Later
// product edits must not alter it.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// ShippingInfo captures the delivery address for an order.
type ShippingInfo struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// PaymentInfo records the external payment reference and its reported status.
// The status is accepted as opaque; this service is not a payment gateway.
type PaymentInfo struct {
	ID     string `bson:"id" json:"id"`
	Status string `bson:"status" json:"status"`
}

// Order is created atomically at checkout and never mutated afterwards except
// for payment and delivery tracking fields. IsPaid/PaidAt are independent of
// OrderStatus: an order can be paid while still Placed.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"userId" json:"userId"`
	ShippingInfo  ShippingInfo        `bson:"shippingInfo" json:"shippingInfo"`
	OrderItems    []OrderItem         `bson:"orderItems" json:"orderItems"`
	PaymentInfo   *PaymentInfo        `bson:"paymentInfo,omitempty" json:"paymentInfo,omitempty"`
	ItemsPrice    float64             `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice      float64             `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice float64             `bson:"shippingPrice" json:"shippingPrice"`
	Discount      float64             `bson:"discount" json:"discount"`
	TotalPrice    float64             `bson:"totalPrice" json:"totalPrice"`
	CouponID      *primitive.ObjectID `bson:"couponId,omitempty" json:"couponId,omitempty"`
	CouponCode    string              `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	OrderStatus   string              `bson:"orderStatus" json:"orderStatus"`
	IsPaid        bool                `bson:"isPaid" json:"isPaid"`
	PaidAt        *time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	DeliveredAt   *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}
