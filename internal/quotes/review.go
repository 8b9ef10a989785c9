package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/omerfdemir/teklifix-backend/pkg/config"
	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	redisclient "github.com/omerfdemir/teklifix-backend/pkg/redis"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

type overlayStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type overlayKeyer interface {
	ReviewOverlayKey(quoteID string) string
}

// ReviewLine is one priced line as the converting customer sees it. The
// effective quantity is the overlay value when present, else the quantity
// the admin priced. LineTotal always reflects the effective quantity.
type ReviewLine struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	EffectiveQuantity int             `json:"effective_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	Included          bool            `json:"included"`
}

// ReviewView is the conversion review screen: the stored admin total next
// to a live total recomputed from the effective quantities.
type ReviewView struct {
	QuoteID       uuid.UUID         `json:"quote_id"`
	Status        enums.QuoteStatus `json:"status"`
	Lines         []ReviewLine      `json:"lines"`
	OriginalTotal decimal.Decimal   `json:"original_total"`
	LiveTotal     decimal.Decimal   `json:"live_total"`
}

// ReviewService is the customer-side quote-to-order conversion engine.
type ReviewService interface {
	Review(ctx context.Context, quoteID uuid.UUID, email string) (*ReviewView, error)
	SetQuantity(ctx context.Context, quoteID uuid.UUID, email, productID string, quantity int) (*ReviewView, error)
	Convert(ctx context.Context, quoteID uuid.UUID, email string, selected []string) (*models.Quote, error)
}

type reviewService struct {
	quotes  Service
	repo    Repository
	overlay overlayStore
	keyer   overlayKeyer
	ttl     time.Duration
	logg    *logger.Logger
}

// NewReviewService builds the conversion engine on top of the quotes
// service and the Redis overlay store.
func NewReviewService(
	quotes Service,
	repo Repository,
	client *redisclient.Client,
	cfg config.ReviewConfig,
	logg *logger.Logger,
) (ReviewService, error) {
	if quotes == nil {
		return nil, fmt.Errorf("quotes service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if cfg.OverlayTTL <= 0 {
		return nil, fmt.Errorf("review overlay ttl must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &reviewService{
		quotes:  quotes,
		repo:    repo,
		overlay: client,
		keyer:   client,
		ttl:     cfg.OverlayTTL,
		logg:    logg,
	}, nil
}

func (s *reviewService) Review(ctx context.Context, quoteID uuid.UUID, email string) (*ReviewView, error) {
	quote, err := s.reviewableQuote(ctx, quoteID, email)
	if err != nil {
		return nil, err
	}
	edits, err := s.loadOverlay(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return buildReviewView(quote, edits), nil
}

// SetQuantity stores one edited quantity in the overlay. Zero excludes the
// line from conversion; the floor here is zero, not one, unlike the cart.
func (s *reviewService) SetQuantity(ctx context.Context, quoteID uuid.UUID, email, productID string, quantity int) (*ReviewView, error) {
	quote, err := s.reviewableQuote(ctx, quoteID, email)
	if err != nil {
		return nil, err
	}

	productID = strings.TrimSpace(productID)
	if !hasPricingLine(quote.Pricing, productID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not on the quote pricing")
	}
	if quantity < 0 {
		quantity = 0
	}

	edits, err := s.loadOverlay(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	edits[productID] = quantity
	if err := s.saveOverlay(ctx, quoteID, edits); err != nil {
		return nil, err
	}
	return buildReviewView(quote, edits), nil
}

// Convert finalizes the quote as an order. The selection defaults to every
// line with a positive effective quantity; an explicit selection narrows it
// further but can never resurrect an excluded line.
func (s *reviewService) Convert(ctx context.Context, quoteID uuid.UUID, email string, selected []string) (*models.Quote, error) {
	quote, err := s.quotes.GetForCustomer(ctx, quoteID, email)
	if err != nil {
		return nil, err
	}
	if quote.Status != enums.QuoteStatusPriced {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot convert quote from status %s", quote.Status),
		)
	}

	edits, err := s.loadOverlay(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	included := make(map[string]bool, len(quote.Pricing))
	order := make([]string, 0, len(quote.Pricing))
	for _, line := range quote.Pricing {
		if effectiveQuantity(line, edits) > 0 {
			included[line.ProductID] = true
			order = append(order, line.ProductID)
		}
	}

	final := order
	if len(selected) > 0 {
		wanted := make(map[string]bool, len(selected))
		for _, id := range selected {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if !included[id] {
				return nil, pkgerrors.New(
					pkgerrors.CodeValidation,
					fmt.Sprintf("product %q is not available for conversion", id),
				)
			}
			wanted[id] = true
		}
		final = final[:0]
		for _, id := range order {
			if wanted[id] {
				final = append(final, id)
			}
		}
	}
	if len(final) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for conversion")
	}

	// A selection of zero-priced lines still totals to nothing; treat it
	// like an empty selection and leave the quote untouched.
	wanted := make(map[string]bool, len(final))
	for _, id := range final {
		wanted[id] = true
	}
	total := decimal.Zero
	for _, line := range quote.Pricing {
		if !wanted[line.ProductID] {
			continue
		}
		qty := effectiveQuantity(line, edits)
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2))
	}
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	now := time.Now().UTC()
	quote.SelectedItems = pq.StringArray(final)
	quote.ConvertedAt = &now
	quote.Status = enums.QuoteStatusConverted

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert quote")
	}

	if err := s.overlay.Del(ctx, s.keyer.ReviewOverlayKey(quoteID.String())); err != nil {
		s.logg.Warn(s.logg.WithQuoteID(ctx, quoteID.String()), "quote.overlay_discard.failed")
	}
	s.logg.Info(s.logg.WithQuoteID(ctx, quoteID.String()), "quote.converted")
	return updated, nil
}

func (s *reviewService) reviewableQuote(ctx context.Context, quoteID uuid.UUID, email string) (*models.Quote, error) {
	quote, err := s.quotes.GetForCustomer(ctx, quoteID, email)
	if err != nil {
		return nil, err
	}
	if quote.Status != enums.QuoteStatusPriced {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot review quote from status %s", quote.Status),
		)
	}
	return quote, nil
}

func (s *reviewService) loadOverlay(ctx context.Context, quoteID uuid.UUID) (map[string]int, error) {
	raw, err := s.overlay.Get(ctx, s.keyer.ReviewOverlayKey(quoteID.String()))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return map[string]int{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review overlay")
	}

	edits := map[string]int{}
	if err := json.Unmarshal([]byte(raw), &edits); err != nil {
		s.logg.Warn(s.logg.WithQuoteID(ctx, quoteID.String()), "quote.overlay.corrupt")
		return map[string]int{}, nil
	}
	return edits, nil
}

func (s *reviewService) saveOverlay(ctx context.Context, quoteID uuid.UUID, edits map[string]int) error {
	payload, err := json.Marshal(edits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode review overlay")
	}
	if err := s.overlay.Set(ctx, s.keyer.ReviewOverlayKey(quoteID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review overlay")
	}
	return nil
}

func buildReviewView(quote *models.Quote, edits map[string]int) *ReviewView {
	view := &ReviewView{
		QuoteID:       quote.ID,
		Status:        quote.Status,
		Lines:         make([]ReviewLine, 0, len(quote.Pricing)),
		OriginalTotal: quote.Pricing.Total(),
		LiveTotal:     decimal.Zero,
	}

	for _, line := range quote.Pricing {
		effective := effectiveQuantity(line, edits)
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(effective))).Round(2)
		view.Lines = append(view.Lines, ReviewLine{
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			Quantity:          line.Quantity,
			EffectiveQuantity: effective,
			UnitPrice:         line.UnitPrice,
			LineTotal:         total,
			Included:          effective > 0,
		})
		view.LiveTotal = view.LiveTotal.Add(total)
	}
	view.LiveTotal = view.LiveTotal.Round(2)
	return view
}

func effectiveQuantity(line types.PricingLine, edits map[string]int) int {
	if quantity, ok := edits[line.ProductID]; ok {
		return quantity
	}
	return line.Quantity
}

func hasPricingLine(pricing types.PricingLines, productID string) bool {
	for _, line := range pricing {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}
