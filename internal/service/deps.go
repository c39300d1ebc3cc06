package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

// Repository interfaces are declared here, on the consuming side, so the
// services can be exercised against in-memory fakes. The mongo-backed types
// in internal/repository are the production implementations.

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, role string, page repository.Page) ([]*entity.User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]*entity.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type CartRepository interface {
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*entity.CartItem, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*entity.CartItem, error)
	SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.CartItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	InsertItems(ctx context.Context, items []*entity.OrderItem) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteItems(ctx context.Context, orderID primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	ItemsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]*entity.OrderItem, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page repository.Page) ([]*entity.Order, int64, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to entity.OrderStatus) error
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status entity.PaymentStatus) error
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error)
	Revenue(ctx context.Context) (float64, error)
	MonthlyRevenue(ctx context.Context, months int) ([]repository.MonthlyRevenue, error)
}

type ProductCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type SessionStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type IdempotencyGuard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
