package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	CategoryID    primitive.ObjectID `bson:"category_id" json:"category_id"`
	Price         float64            `bson:"price" json:"price"`
	StockQuantity int                `bson:"stock_quantity" json:"stock_quantity"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Purchasable reports whether the product can be sold in the given quantity.
func (p *Product) Purchasable(quantity int) bool {
	return p.Active && quantity > 0 && p.StockQuantity >= quantity
}
