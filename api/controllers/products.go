package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omerfdemir/teklifix-backend/api/responses"
	"github.com/omerfdemir/teklifix-backend/api/validators"
	"github.com/omerfdemir/teklifix-backend/internal/catalog"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
)

// ListProducts serves the public storefront listing: active products only.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listProductsHandler(svc, logg, false)
}

// AdminListProducts includes inactive products in the listing.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listProductsHandler(svc, logg, true)
}

func listProductsHandler(svc catalog.Service, logg *logger.Logger, includeAll bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), catalog.ListProductsInput{
			Category:    strings.TrimSpace(r.URL.Query().Get("category")),
			Search:      strings.TrimSpace(r.URL.Query().Get("search")),
			IncludeAll:  includeAll,
			Limit:       limit,
			CursorToken: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetProduct serves one product by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type productRequest struct {
	Name             string   `json:"name" validate:"required"`
	Description      *string  `json:"description,omitempty"`
	Category         string   `json:"category" validate:"required"`
	Images           []string `json:"images,omitempty"`
	Variation        *string  `json:"variation,omitempty"`
	Variants         []string `json:"variants,omitempty"`
	MinOrderQuantity int      `json:"min_order_quantity" validate:"omitempty,min=1"`
	PriceRange       *string  `json:"price_range,omitempty"`
	StockQuantity    *int     `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	IsActive         *bool    `json:"is_active,omitempty"`
}

func (p productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Images:           p.Images,
		Variation:        p.Variation,
		Variants:         p.Variants,
		MinOrderQuantity: p.MinOrderQuantity,
		PriceRange:       p.PriceRange,
		StockQuantity:    p.StockQuantity,
		IsActive:         p.IsActive,
	}
}

// AdminCreateProduct handles product creation from the admin panel.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct replaces a product's editable fields.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListCategories serves the public category list.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

type categoryRequest struct {
	Name string  `json:"name" validate:"required"`
	Slug string  `json:"slug,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

// AdminCreateCategory adds a category, deriving the slug when absent.
func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), catalog.CategoryInput{
			Name: payload.Name,
			Slug: payload.Slug,
			Icon: payload.Icon,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminUpdateCategory renames a category or replaces its slug and icon.
func AdminUpdateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), id, catalog.CategoryInput{
			Name: payload.Name,
			Slug: payload.Slug,
			Icon: payload.Icon,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteCategory removes a category.
func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
