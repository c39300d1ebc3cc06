package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStatusConflict    = errors.New("status conflict")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

// PageFrom clamps raw query values into a usable page.
func PageFrom(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

func (p Page) Limit() int64 {
	return int64(p.Size)
}

type ProductFilter struct {
	CategoryID *primitive.ObjectID
	ActiveOnly bool
	Search     string
	Page       Page
}

type OrderFilter struct {
	UserID        *primitive.ObjectID
	Status        entity.OrderStatus
	PaymentStatus entity.PaymentStatus
	Page          Page
}

// MonthlyRevenue is one bucket of the dashboard revenue chart.
type MonthlyRevenue struct {
	Month   string  `bson:"_id" json:"month"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}
