package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
)

var slugSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

// Service exposes catalog reads for the storefront and writes for the admin panel.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductsPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ListProductsInput captures storefront listing filters.
type ListProductsInput struct {
	Category    string
	Search      string
	IncludeAll  bool
	Limit       int
	CursorToken string
}

// ProductsPage is one page of a cursor-paginated product listing.
type ProductsPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ProductInput carries the admin-supplied product payload.
type ProductInput struct {
	Name             string
	Description      *string
	Category         string
	Images           []string
	Variation        *string
	Variants         []string
	MinOrderQuantity int
	PriceRange       *string
	StockQuantity    *int
	IsActive         *bool
}

// CategoryInput carries the admin-supplied category payload.
type CategoryInput struct {
	Name string
	Slug string
	Icon *string
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductsPage, error) {
	cursor, err := pagination.ParseCursor(input.CursorToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	products, err := s.repo.ListProducts(ctx, ProductFilter{
		Category:   input.Category,
		Search:     input.Search,
		ActiveOnly: !input.IncludeAll,
		Limit:      limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &ProductsPage{Products: products}
	if len(products) > limit {
		page.Products = products[:limit]
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	if page.Products == nil {
		page.Products = []models.Product{}
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// GetByID satisfies loaders that only need the raw row, cart included.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		Category:         strings.TrimSpace(input.Category),
		Images:           pq.StringArray(input.Images),
		Variation:        input.Variation,
		Variants:         pq.StringArray(input.Variants),
		MinOrderQuantity: normalizeMinOrderQty(input.MinOrderQuantity),
		PriceRange:       input.PriceRange,
		StockQuantity:    input.StockQuantity,
		IsActive:         true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Category = strings.TrimSpace(input.Category)
	product.Images = pq.StringArray(input.Images)
	product.Variation = input.Variation
	product.Variants = pq.StringArray(input.Variants)
	product.MinOrderQuantity = normalizeMinOrderQty(input.MinOrderQuantity)
	product.PriceRange = input.PriceRange
	product.StockQuantity = input.StockQuantity
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}

	if existing, err := s.repo.GetCategoryBySlug(ctx, slug); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category slug")
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{
		Name: name,
		Slug: slug,
		Icon: input.Icon,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

// UpdateCategory replaces a category's editable fields. The slug stays
// unique across categories, the row being edited excluded.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if existing, err := s.repo.GetCategoryBySlug(ctx, slug); err == nil && existing != nil && existing.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category slug")
	}

	category.Name = name
	category.Slug = slug
	category.Icon = input.Icon

	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category is required")
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be non-negative")
	}
	return nil
}

func normalizeMinOrderQty(value int) int {
	if value < 1 {
		return 1
	}
	return value
}

// Slugify lowercases and strips a name down to a URL-safe slug.
func Slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugSanitizeRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
