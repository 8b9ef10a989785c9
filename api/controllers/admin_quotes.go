package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/omerfdemir/teklifix-backend/api/responses"
	"github.com/omerfdemir/teklifix-backend/api/validators"
	quotesvc "github.com/omerfdemir/teklifix-backend/internal/quotes"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
)

type setQuoteStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type pricingLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"omitempty,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type setQuotePricingRequest struct {
	Lines []pricingLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type setQuoteNoteRequest struct {
	Note string `json:"note"`
}

// AdminListQuotes lists every quote, optionally filtered by status.
func AdminListQuotes(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), quotesvc.ListInput{
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

// AdminGetQuote serves one quote without ownership scoping.
func AdminGetQuote(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// AdminSetQuoteStatus applies an admin-driven lifecycle transition.
func AdminSetQuoteStatus(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuoteStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseQuoteStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		quote, err := svc.SetStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// AdminSetQuotePricing attaches price lines and moves the quote to priced.
func AdminSetQuotePricing(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuotePricingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]quotesvc.PricingLineInput, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			lines = append(lines, quotesvc.PricingLineInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}

		quote, err := svc.SetPricing(r.Context(), id, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// AdminSetQuoteNote attaches or clears the internal note.
func AdminSetQuoteNote(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		id, err := quoteIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuoteNoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.SetNote(r.Context(), id, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
