package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omerfdemir/teklifix-backend/api/middleware"
	"github.com/omerfdemir/teklifix-backend/api/responses"
	"github.com/omerfdemir/teklifix-backend/api/validators"
	quotesvc "github.com/omerfdemir/teklifix-backend/internal/quotes"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
)

type submitQuoteRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Company      *string `json:"company,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Message      *string `json:"message,omitempty"`
	FileName     *string `json:"file_name,omitempty"`
}

type setReviewQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type convertQuoteRequest struct {
	SelectedItems []string `json:"selected_items,omitempty"`
}

func quoteIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "quoteId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
	}
	return id, nil
}

func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	trimmed := validators.SanitizeString(*value, maxLen)
	return &trimmed
}

func customerEmail(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	email := middleware.ActorEmailFromContext(r.Context())
	if email == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer context missing"))
		return "", false
	}
	return email, true
}

// SubmitQuote turns the session's cart into a pending quote request.
func SubmitQuote(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
			return
		}

		var payload submitQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Submit(r.Context(), quotesvc.SubmitInput{
			CartToken:    token,
			CustomerName: validators.SanitizeString(payload.CustomerName, 120),
			Company:      sanitizeOptional(payload.Company, 120),
			Email:        payload.Email,
			Phone:        sanitizeOptional(payload.Phone, 32),
			Message:      sanitizeOptional(payload.Message, 2000),
			FileName:     sanitizeOptional(payload.FileName, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// CustomerListQuotes lists the authenticated customer's quotes.
func CustomerListQuotes(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		email, ok := customerEmail(r, logg, w)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForCustomer(r.Context(), email, quotesvc.ListInput{
			Status:      r.URL.Query().Get("status"),
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

// CustomerGetQuote serves one of the authenticated customer's quotes.
func CustomerGetQuote(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		email, ok := customerEmail(r, logg, w)
		if !ok {
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.GetForCustomer(r.Context(), id, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteReview serves the conversion review screen for a priced quote.
func QuoteReview(svc quotesvc.ReviewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}
		email, ok := customerEmail(r, logg, w)
		if !ok {
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Review(r.Context(), id, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// QuoteReviewSetQuantity stores one edited quantity in the review overlay.
func QuoteReviewSetQuantity(svc quotesvc.ReviewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}
		email, ok := customerEmail(r, logg, w)
		if !ok {
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setReviewQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetQuantity(r.Context(), id, email, chi.URLParam(r, "productId"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// QuoteConvert finalizes a priced quote as an order.
func QuoteConvert(svc quotesvc.ReviewService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}
		email, ok := customerEmail(r, logg, w)
		if !ok {
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// an absent body means "convert everything still included"
		var payload convertQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Convert(r.Context(), id, email, payload.SelectedItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
