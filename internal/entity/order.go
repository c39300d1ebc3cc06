package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the allowed order_status edges. delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:  {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	Subtotal          float64            `bson:"subtotal" json:"subtotal"`
	ShippingFee       float64            `bson:"shipping_fee" json:"shipping_fee"`
	TotalAmount       float64            `bson:"total_amount" json:"total_amount"`
	RecipientName     string             `bson:"shipping_recipient_name" json:"shipping_recipient_name"`
	ShippingAddress   string             `bson:"shipping_address" json:"shipping_address"`
	PaymentMethod     string             `bson:"payment_method" json:"payment_method"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderStatus       OrderStatus        `bson:"order_status" json:"order_status"`
	PaymentStatus     PaymentStatus      `bson:"payment_status" json:"payment_status"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// OrderItem freezes product name and unit price at purchase time, decoupled
// from later catalog edits.
type OrderItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     primitive.ObjectID `bson:"order_id" json:"order_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	UnitPrice   float64            `bson:"unit_price" json:"unit_price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	LineTotal   float64            `bson:"line_total" json:"line_total"`
}
