package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	quotesvc "github.com/omerfdemir/teklifix-backend/internal/quotes"
	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
)

type stubAdminQuoteService struct {
	quotesvc.Service

	listFn       func(ctx context.Context, input quotesvc.ListInput) (*quotesvc.QuotesPage, error)
	setStatusFn  func(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error)
	setPricingFn func(ctx context.Context, id uuid.UUID, lines []quotesvc.PricingLineInput) (*models.Quote, error)
	setNoteFn    func(ctx context.Context, id uuid.UUID, note string) (*models.Quote, error)
}

func (s *stubAdminQuoteService) List(ctx context.Context, input quotesvc.ListInput) (*quotesvc.QuotesPage, error) {
	return s.listFn(ctx, input)
}

func (s *stubAdminQuoteService) SetStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
	return s.setStatusFn(ctx, id, status)
}

func (s *stubAdminQuoteService) SetPricing(ctx context.Context, id uuid.UUID, lines []quotesvc.PricingLineInput) (*models.Quote, error) {
	return s.setPricingFn(ctx, id, lines)
}

func (s *stubAdminQuoteService) SetNote(ctx context.Context, id uuid.UUID, note string) (*models.Quote, error) {
	return s.setNoteFn(ctx, id, note)
}

func TestAdminListQuotes(t *testing.T) {
	var got quotesvc.ListInput
	svc := &stubAdminQuoteService{listFn: func(ctx context.Context, input quotesvc.ListInput) (*quotesvc.QuotesPage, error) {
		got = input
		return &quotesvc.QuotesPage{}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/quotes?status=pending&limit=50", nil)
	rec := httptest.NewRecorder()
	AdminListQuotes(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got.Status != "pending" || got.Limit != 50 {
		t.Fatalf("unexpected list input: %+v", got)
	}
}

func TestAdminListQuotesLimitOutOfRange(t *testing.T) {
	svc := &stubAdminQuoteService{listFn: func(ctx context.Context, input quotesvc.ListInput) (*quotesvc.QuotesPage, error) {
		t.Fatal("List should not be called with an invalid limit")
		return nil, nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/quotes?limit=5000", nil)
	rec := httptest.NewRecorder()
	AdminListQuotes(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAdminSetQuoteStatus(t *testing.T) {
	quoteID := uuid.New()

	makeRequest := func(svc *stubAdminQuoteService, body string) *httptest.ResponseRecorder {
		ctx := quoteRouteContext(context.Background(), quoteID.String())
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/quotes/"+quoteID.String()+"/status", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminSetQuoteStatus(svc, nil).ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid transition", func(t *testing.T) {
		var gotStatus enums.QuoteStatus
		svc := &stubAdminQuoteService{setStatusFn: func(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
			gotStatus = status
			return &models.Quote{ID: id, Status: status}, nil
		}}
		rec := makeRequest(svc, `{"status":"under_review"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if gotStatus != enums.QuoteStatusUnderReview {
			t.Fatalf("expected under_review, got %s", gotStatus)
		}
	})

	t.Run("unknown status value", func(t *testing.T) {
		svc := &stubAdminQuoteService{setStatusFn: func(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
			t.Fatal("SetStatus should not be called with an unparseable status")
			return nil, nil
		}}
		rec := makeRequest(svc, `{"status":"shipped"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("disallowed transition surfaces as 422", func(t *testing.T) {
		svc := &stubAdminQuoteService{setStatusFn: func(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move quote from approved to rejected")
		}}
		rec := makeRequest(svc, `{"status":"rejected"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 got %d", rec.Code)
		}
	})
}

func TestAdminSetQuotePricing(t *testing.T) {
	quoteID := uuid.New()

	makeRequest := func(svc *stubAdminQuoteService, body string) *httptest.ResponseRecorder {
		ctx := quoteRouteContext(context.Background(), quoteID.String())
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/quotes/"+quoteID.String()+"/pricing", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminSetQuotePricing(svc, nil).ServeHTTP(rec, req)
		return rec
	}

	t.Run("forwards decimal prices", func(t *testing.T) {
		var gotLines []quotesvc.PricingLineInput
		svc := &stubAdminQuoteService{setPricingFn: func(ctx context.Context, id uuid.UUID, lines []quotesvc.PricingLineInput) (*models.Quote, error) {
			gotLines = lines
			return &models.Quote{ID: id, Status: enums.QuoteStatusPriced}, nil
		}}

		body := `{"lines":[{"product_id":"p-1","quantity":40,"unit_price":"2.45"},{"product_id":"p-2","unit_price":"1.00"}]}`
		rec := makeRequest(svc, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if len(gotLines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(gotLines))
		}
		if gotLines[0].ProductID != "p-1" || gotLines[0].Quantity != 40 {
			t.Fatalf("unexpected first line: %+v", gotLines[0])
		}
		if !gotLines[0].UnitPrice.Equal(decimal.RequireFromString("2.45")) {
			t.Fatalf("unexpected unit price: %s", gotLines[0].UnitPrice)
		}
		if gotLines[1].Quantity != 0 {
			t.Fatalf("expected omitted quantity to stay zero for the service default, got %d", gotLines[1].Quantity)
		}
	})

	t.Run("empty lines rejected", func(t *testing.T) {
		svc := &stubAdminQuoteService{setPricingFn: func(ctx context.Context, id uuid.UUID, lines []quotesvc.PricingLineInput) (*models.Quote, error) {
			t.Fatal("SetPricing should not be called with no lines")
			return nil, nil
		}}
		rec := makeRequest(svc, `{"lines":[]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("missing product id rejected", func(t *testing.T) {
		svc := &stubAdminQuoteService{setPricingFn: func(ctx context.Context, id uuid.UUID, lines []quotesvc.PricingLineInput) (*models.Quote, error) {
			t.Fatal("SetPricing should not be called with an incomplete line")
			return nil, nil
		}}
		rec := makeRequest(svc, `{"lines":[{"unit_price":"2.45"}]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestAdminSetQuoteNote(t *testing.T) {
	quoteID := uuid.New()
	var gotNote string
	svc := &stubAdminQuoteService{setNoteFn: func(ctx context.Context, id uuid.UUID, note string) (*models.Quote, error) {
		gotNote = note
		return &models.Quote{ID: id}, nil
	}}

	ctx := quoteRouteContext(context.Background(), quoteID.String())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/quotes/"+quoteID.String()+"/note", strings.NewReader(`{"note":"call back Tuesday"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	AdminSetQuoteNote(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if gotNote != "call back Tuesday" {
		t.Fatalf("unexpected note %q", gotNote)
	}
}
