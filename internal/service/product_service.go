package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

type ProductService struct {
	products   ProductRepository
	categories CategoryRepository
	cache      ProductCache
}

func NewProductService(products ProductRepository, categories CategoryRepository, cache ProductCache) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		cache:      cache,
	}
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	return s.products.List(ctx, filter)
}

// Get reads through the cache. Cache failures are logged and fall back to
// the database.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product %s from cache", id.Hex())
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, product); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %s in cache", id.Hex())
	}
	return product, nil
}

type ProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	CategoryID    string  `json:"category_id"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Active        *bool   `json:"active"`
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*entity.Product, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", ErrValidation)
	}

	categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrValidation)
		}
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	product := &entity.Product{
		Name:          input.Name,
		Description:   input.Description,
		CategoryID:    categoryID,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Active:        active,
	}
	if err := s.products.Create(ctx, product); err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, input ProductInput) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	product.Description = input.Description
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	product.Price = input.Price
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", ErrValidation)
	}
	product.StockQuantity = input.StockQuantity
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
		}
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: category not found", ErrValidation)
			}
			return nil, err
		}
		product.CategoryID = categoryID
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, product); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %s in cache", id.Hex())
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %s from cache", id.Hex())
	}
	return nil
}

// InvalidateCache drops the cached copy of a product whose stock changed
// outside the catalog endpoints. Called by the order event consumer.
func (s *ProductService) InvalidateCache(ctx context.Context, id primitive.ObjectID) error {
	return s.cache.Delete(ctx, id)
}
