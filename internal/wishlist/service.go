package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/internal/products"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
)

type repository interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	ListProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes wishlist management for customers.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]products.ProductDTO, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo        repository
	productRepo productLoader
}

// NewService builds the wishlist service.
func NewService(repo repository, productRepo productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{repo: repo, productRepo: productRepo}, nil
}

// List returns the user's favorited products.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]products.ProductDTO, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]products.ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, products.ToDTO(row))
	}
	return dtos, nil
}

// Add favorites a product after confirming it exists.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return errors.New(errors.CodeValidation, "user id and product id are required")
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, productID)
}

// Remove unfavorites a product. Removing an absent entry is a no-op.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return errors.New(errors.CodeValidation, "user id and product id are required")
	}
	return s.repo.Remove(ctx, userID, productID)
}
