package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
)

type CategoryService struct {
	categories CategoryRepository
	products   ProductRepository
}

func NewCategoryService(categories CategoryRepository, products ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

func (s *CategoryService) List(ctx context.Context) ([]*entity.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	return s.categories.GetByID(ctx, id)
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*entity.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	category := &entity.Category{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		logger.Error().Err(err).Msg("Error creating category")
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, input CategoryInput) (*entity.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		category.Name = input.Name
	}
	category.Description = input.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that products still reference.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.categories.Delete(ctx, id)
}
