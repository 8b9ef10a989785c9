package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omerfdemir/teklifix-backend/api/middleware"
	"github.com/omerfdemir/teklifix-backend/api/responses"
	"github.com/omerfdemir/teklifix-backend/api/validators"
	cartsvc "github.com/omerfdemir/teklifix-backend/internal/cart"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

func cartToken(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	token := middleware.CartTokenFromContext(r.Context())
	if token == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
		return "", false
	}
	return token, true
}

// GetCart returns the session's cart, empty when nothing is stored.
func GetCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		token, ok := cartToken(r, logg, w)
		if !ok {
			return
		}

		current, err := svc.Get(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// AddCartItem merges a product into the cart.
func AddCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		token, ok := cartToken(r, logg, w)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.AddItem(r.Context(), token, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// UpdateCartItem sets an absolute quantity on an existing line.
func UpdateCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		token, ok := cartToken(r, logg, w)
		if !ok {
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.UpdateQuantity(r.Context(), token, chi.URLParam(r, "productId"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// RemoveCartItem drops a line; removing an absent line succeeds.
func RemoveCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		token, ok := cartToken(r, logg, w)
		if !ok {
			return
		}

		current, err := svc.RemoveItem(r.Context(), token, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// ClearCart drops the whole snapshot.
func ClearCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		token, ok := cartToken(r, logg, w)
		if !ok {
			return
		}

		if err := svc.Clear(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
