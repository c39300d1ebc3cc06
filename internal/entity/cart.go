package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (user, product) line prior to checkout.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartLine is a cart item joined with its current product state.
type CartLine struct {
	Item      CartItem `json:"item"`
	Product   Product  `json:"product"`
	LineTotal float64  `json:"line_total"`
	// Available is false when the product is inactive or stock no longer
	// covers the requested quantity; such lines are dropped at checkout.
	Available bool `json:"available"`
}

// Cart is the computed view returned by GET /api/cart. Totals are computed
// over available lines only, with the same pricing rule checkout uses.
type Cart struct {
	Lines       []CartLine `json:"lines"`
	Subtotal    float64    `json:"subtotal"`
	ShippingFee float64    `json:"shipping_fee"`
	Total       float64    `json:"total"`
	ItemCount   int        `json:"item_count"`
}
