package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/internal/cart"
	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartSource interface {
	Get(ctx context.Context, token string) (*cart.Cart, error)
	Clear(ctx context.Context, token string) error
}

// SubmitInput carries the contact block attached to a cart at submission.
type SubmitInput struct {
	CartToken    string
	CustomerName string
	Company      *string
	Email        string
	Phone        *string
	Message      *string
	FileName     *string
}

// ListInput captures quote listing filters.
type ListInput struct {
	Status      string
	Limit       int
	CursorToken string
}

// QuotesPage is one page of a cursor-paginated quote listing.
type QuotesPage struct {
	Quotes     []models.Quote `json:"quotes"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// PricingLineInput is one admin-supplied price line. Quantity defaults to
// the requested quantity when omitted; TotalPrice is always computed here.
type PricingLineInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Service owns the quote lifecycle: submission, the status state machine,
// and the admin review operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Quote, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	GetForCustomer(ctx context.Context, id uuid.UUID, email string) (*models.Quote, error)
	List(ctx context.Context, input ListInput) (*QuotesPage, error)
	ListForCustomer(ctx context.Context, email string, input ListInput) (*QuotesPage, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error)
	SetPricing(ctx context.Context, id uuid.UUID, lines []PricingLineInput) (*models.Quote, error)
	SetNote(ctx context.Context, id uuid.UUID, note string) (*models.Quote, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	carts cartSource
	logg  *logger.Logger
}

// NewService builds a quotes service backed by the provided stack.
func NewService(repo Repository, tx txRunner, carts cartSource, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, carts: carts, logg: logg}, nil
}

// adminStatusWrites are the transitions an administrator can request
// directly. `priced` is reachable only by attaching pricing and `converted`
// only by customer conversion, so neither appears as a target here.
var adminStatusWrites = map[enums.QuoteStatus]map[enums.QuoteStatus]bool{
	enums.QuoteStatusPending: {
		enums.QuoteStatusUnderReview: true,
		enums.QuoteStatusApproved:    true,
		enums.QuoteStatusRejected:    true,
	},
	enums.QuoteStatusUnderReview: {
		enums.QuoteStatusApproved: true,
		enums.QuoteStatusRejected: true,
	},
	enums.QuoteStatusPriced: {
		enums.QuoteStatusApproved: true,
		enums.QuoteStatusRejected: true,
	},
}

// pricingAllowed lists the statuses an administrator may attach pricing in.
var pricingAllowed = map[enums.QuoteStatus]bool{
	enums.QuoteStatusPending:     true,
	enums.QuoteStatusUnderReview: true,
	enums.QuoteStatusPriced:      true,
}

// Submit snapshots the cart into a pending quote. The cart is cleared only
// after the quote row committed; a failed clear leaves a stale cart behind
// but never loses the quote.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Quote, error) {
	name := strings.TrimSpace(input.CustomerName)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.CartToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}

	current, err := s.carts.Get(ctx, input.CartToken)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make(types.QuoteItems, len(current.Items))
	copy(items, current.Items)

	quote := &models.Quote{
		CustomerName: name,
		Company:      input.Company,
		Email:        email,
		Phone:        input.Phone,
		Message:      input.Message,
		FileName:     input.FileName,
		Items:        items,
		Status:       enums.QuoteStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, quote)
		if err != nil {
			return err
		}
		quote = created
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}

	if err := s.carts.Clear(ctx, input.CartToken); err != nil {
		s.logg.Warn(s.logg.WithQuoteID(ctx, quote.ID.String()), "quote.cart_clear.failed")
	}
	s.logg.Info(s.logg.WithQuoteID(ctx, quote.ID.String()), "quote.submitted")
	return quote, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.loadQuote(ctx, id)
}

// GetForCustomer loads a quote only when it belongs to the given email.
func (s *service) GetForCustomer(ctx context.Context, id uuid.UUID, email string) (*models.Quote, error) {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Email != normalizeEmail(email) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote belongs to a different customer")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*QuotesPage, error) {
	return s.list(ctx, "", input)
}

func (s *service) ListForCustomer(ctx context.Context, email string, input ListInput) (*QuotesPage, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return s.list(ctx, email, input)
}

func (s *service) list(ctx context.Context, email string, input ListInput) (*QuotesPage, error) {
	cursor, err := pagination.ParseCursor(input.CursorToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filter := QuoteFilter{Email: email, Cursor: cursor}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	limit := pagination.NormalizeLimit(input.Limit)
	filter.Limit = limit

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}

	page := &QuotesPage{Quotes: rows}
	if len(rows) > limit {
		page.Quotes = rows[:limit]
		last := page.Quotes[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	if page.Quotes == nil {
		page.Quotes = []models.Quote{}
	}
	return page, nil
}

// SetStatus applies an admin-requested transition. Writing the current
// status back is a no-op rather than an error.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*models.Quote, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quote status %q", status))
	}

	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status == status {
		return quote, nil
	}
	if !adminStatusWrites[quote.Status][status] {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from status %s to %s", quote.Status, status),
		)
	}

	quote.Status = status
	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	s.logg.Info(
		s.logg.WithField(s.logg.WithQuoteID(ctx, id.String()), "quote_status", status.String()),
		"quote.status.changed",
	)
	return updated, nil
}

// SetPricing validates and stores the admin price lines, computes each line
// total server-side, and moves the quote to `priced` in the same write.
func (s *service) SetPricing(ctx context.Context, id uuid.UUID, lines []PricingLineInput) (*models.Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricing lines are required")
	}

	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pricingAllowed[quote.Status] {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot price quote from status %s", quote.Status),
		)
	}

	requested := make(map[string]types.QuoteItem, len(quote.Items))
	for _, item := range quote.Items {
		requested[item.ProductID] = item
	}

	pricing := make(types.PricingLines, 0, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		item, known := requested[productID]
		if productID == "" || !known {
			return nil, pkgerrors.New(
				pkgerrors.CodeValidation,
				fmt.Sprintf("pricing references product %q not on the quote", line.ProductID),
			)
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
		}

		quantity := line.Quantity
		if quantity < 1 {
			quantity = item.Quantity
		}
		pricing = append(pricing, types.PricingLine{
			ProductID:   productID,
			ProductName: item.ProductName,
			Quantity:    quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  lineTotal(quantity, line.UnitPrice),
		})
	}

	quote.Pricing = pricing
	quote.Status = enums.QuoteStatusPriced
	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote pricing")
	}
	s.logg.Info(s.logg.WithQuoteID(ctx, id.String()), "quote.priced")
	return updated, nil
}

// SetNote attaches or replaces the admin note. Notes stay writable in every
// status, terminal ones included.
func (s *service) SetNote(ctx context.Context, id uuid.UUID, note string) (*models.Quote, error) {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		quote.AdminNote = nil
	} else {
		quote.AdminNote = &trimmed
	}

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote note")
	}
	return updated, nil
}

func (s *service) loadQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func lineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
