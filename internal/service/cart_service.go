package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

type CartService struct {
	carts    CartRepository
	products ProductRepository
	pricing  Pricing
}

func NewCartService(carts CartRepository, products ProductRepository, pricing Pricing) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		pricing:  pricing,
	}
}

// GetCart joins the user's cart items with current product state and prices
// the result with the same rule checkout uses. Lines whose product was
// deleted are dropped; inactive or under-stocked lines are kept but flagged
// unavailable and left out of the totals.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*entity.Cart, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &entity.Cart{Lines: []entity.CartLine{}}
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}

		line := entity.CartLine{
			Item:      *item,
			Product:   *product,
			Available: product.Purchasable(item.Quantity),
		}
		if line.Available {
			line.LineTotal = product.Price * float64(item.Quantity)
			cart.Subtotal += line.LineTotal
			cart.ItemCount += item.Quantity
		}
		cart.Lines = append(cart.Lines, line)
	}

	cart.ShippingFee = s.pricing.ShippingFeeFor(cart.Subtotal)
	cart.Total = cart.Subtotal + cart.ShippingFee
	return cart, nil
}

// AddItem adds quantity to the (user, product) line. The requested total
// must not exceed current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*entity.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductUnavailable
	}

	existing := 0
	if current, err := s.carts.GetByUserAndProduct(ctx, userID, productID); err == nil {
		existing = current.Quantity
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if existing+quantity > product.StockQuantity {
		return nil, repository.ErrInsufficientStock
	}

	item, err := s.carts.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding product %s to cart", productID.Hex())
		return nil, err
	}
	return item, nil
}

// UpdateQuantity sets a new quantity on an owned cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID primitive.ObjectID, quantity int) (*entity.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	item, err := s.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		return nil, repository.ErrInsufficientStock
	}

	if err := s.carts.SetQuantity(ctx, cartItemID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, cartItemID primitive.ObjectID) error {
	if _, err := s.ownedItem(ctx, userID, cartItemID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, cartItemID)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.DeleteByUser(ctx, userID)
}

// ownedItem resolves a cart item and hides other users' lines behind
// ErrNotFound.
func (s *CartService) ownedItem(ctx context.Context, userID, cartItemID primitive.ObjectID) (*entity.CartItem, error) {
	item, err := s.carts.GetByID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return item, nil
}
