package products

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/pagination"
)

var slugSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

type repository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, *pagination.Cursor, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// Service exposes catalog business rules for the storefront and admin panel.
type Service interface {
	List(ctx context.Context, params ListParams) (ProductPageDTO, error)
	GetBySlug(ctx context.Context, slug string) (ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (ProductDTO, error)
}

type service struct {
	repo repository
}

// NewService builds the catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeValidation, "product repository is required")
	}
	return &service{repo: repo}, nil
}

// List returns a storefront page of active products.
func (s *service) List(ctx context.Context, params ListParams) (ProductPageDTO, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return ProductPageDTO{}, err
	}

	page := ProductPageDTO{Products: make([]ProductDTO, 0, len(rows))}
	for _, row := range rows {
		page.Products = append(page.Products, ToDTO(row))
	}
	if next != nil {
		token := next.Encode()
		page.NextCursor = &token
	}
	return page, nil
}

// GetBySlug fetches one active product for the storefront detail page.
func (s *service) GetBySlug(ctx context.Context, slug string) (ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDTO{}, errors.New(errors.CodeValidation, "slug is required")
	}
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return ProductDTO{}, err
	}
	return ToDTO(*product), nil
}

// Create validates and inserts an admin-authored catalog entry.
func (s *service) Create(ctx context.Context, input CreateProductInput) (ProductDTO, error) {
	if err := validateCreate(input); err != nil {
		return ProductDTO{}, err
	}

	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}

	product := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Brand:       input.Brand,
		Price:       input.Price,
		PromoPrice:  input.PromoPrice,
		Stock:       input.Stock,
		Image:       input.Image,
		Tags:        input.Tags,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return ProductDTO{}, err
	}
	return ToDTO(product), nil
}

// Update applies a partial admin edit.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return ProductDTO{}, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return ProductDTO{}, errors.New(errors.CodeValidation, "price must be positive")
		}
		product.Price = *input.Price
	}
	if input.ClearPromo {
		product.PromoPrice = nil
	} else if input.PromoPrice != nil {
		if !input.PromoPrice.IsPositive() {
			return ProductDTO{}, errors.New(errors.CodeValidation, "promotional price must be positive")
		}
		product.PromoPrice = input.PromoPrice
	}
	if input.Image != nil {
		product.Image = input.Image
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return ProductDTO{}, err
	}
	return ToDTO(*product), nil
}

// Delete removes a catalog entry permanently.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New(errors.CodeValidation, "product id is required")
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock applies a relative stock change and returns the new state.
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (ProductDTO, error) {
	if delta == 0 {
		return ProductDTO{}, errors.New(errors.CodeValidation, "stock delta cannot be zero")
	}
	if err := s.repo.AdjustStock(ctx, id, delta); err != nil {
		return ProductDTO{}, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	return ToDTO(*product), nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New(errors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return errors.New(errors.CodeValidation, "category is required")
	}
	if !input.Price.IsPositive() {
		return errors.New(errors.CodeValidation, "price must be positive")
	}
	if input.PromoPrice != nil && !input.PromoPrice.IsPositive() {
		return errors.New(errors.CodeValidation, "promotional price must be positive")
	}
	if input.PromoPrice != nil && input.PromoPrice.GreaterThanOrEqual(input.Price) {
		return errors.New(errors.CodeValidation, "promotional price must be below the regular price")
	}
	if input.Stock < 0 {
		return errors.New(errors.CodeValidation, "stock cannot be negative")
	}
	return nil
}

// Slugify lowercases a product name into a url-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSanitizeRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
