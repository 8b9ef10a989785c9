package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type snapshotAccess interface {
	Load(ctx context.Context, token string) (Snapshot, error)
	Save(ctx context.Context, token string, snap Snapshot) error
	Clear(ctx context.Context, token string) error
}

// Cart is the materialized view handed to controllers.
type Cart struct {
	Items         []types.QuoteItem `json:"items"`
	DistinctCount int               `json:"distinct_count"`
	UnitCount     int               `json:"unit_count"`
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID string
	Quantity  int
}

// Service exposes the persisted quote-cart operations.
type Service interface {
	Get(ctx context.Context, token string) (*Cart, error)
	AddItem(ctx context.Context, token string, input AddItemInput) (*Cart, error)
	UpdateQuantity(ctx context.Context, token, productID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, token, productID string) (*Cart, error)
	Clear(ctx context.Context, token string) error
}

type service struct {
	snapshots snapshotAccess
	products  productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(snapshots snapshotAccess, products productLoader) (Service, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("cart snapshot store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{snapshots: snapshots, products: products}, nil
}

func (s *service) Get(ctx context.Context, token string) (*Cart, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	return materialize(snap), nil
}

// AddItem merges the requested quantity into an existing line or appends a new
// one. A non-positive quantity leaves the cart untouched.
func (s *service) AddItem(ctx context.Context, token string, input AddItemInput) (*Cart, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	productID, err := uuid.Parse(strings.TrimSpace(input.ProductID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a valid uuid")
	}

	snap, err := s.snapshots.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	if input.Quantity <= 0 {
		return materialize(snap), nil
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	merged := false
	for i := range snap.Items {
		if snap.Items[i].ProductID == productID.String() {
			snap.Items[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		quantity := input.Quantity
		if quantity < product.MinOrderQuantity {
			quantity = product.MinOrderQuantity
		}
		snap.Items = append(snap.Items, types.QuoteItem{
			ProductID:   productID.String(),
			ProductName: product.Name,
			Quantity:    quantity,
		})
	}

	if err := s.snapshots.Save(ctx, token, snap); err != nil {
		return nil, err
	}
	return materialize(snap), nil
}

// UpdateQuantity sets a line's quantity, clamping requests below one up to one.
func (s *service) UpdateQuantity(ctx context.Context, token, productID string, quantity int) (*Cart, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	if quantity < 1 {
		quantity = 1
	}

	found := false
	for i := range snap.Items {
		if snap.Items[i].ProductID == productID {
			snap.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	if err := s.snapshots.Save(ctx, token, snap); err != nil {
		return nil, err
	}
	return materialize(snap), nil
}

// RemoveItem drops the line if present; removing an absent product is a no-op.
func (s *service) RemoveItem(ctx context.Context, token, productID string) (*Cart, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	filtered := snap.Items[:0]
	removed := false
	for _, item := range snap.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		filtered = append(filtered, item)
	}
	snap.Items = filtered

	if removed {
		if err := s.snapshots.Save(ctx, token, snap); err != nil {
			return nil, err
		}
	}
	return materialize(snap), nil
}

func (s *service) Clear(ctx context.Context, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return s.snapshots.Clear(ctx, token)
}

func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return nil
}

func materialize(snap Snapshot) *Cart {
	cart := &Cart{Items: snap.Items}
	if cart.Items == nil {
		cart.Items = []types.QuoteItem{}
	}
	cart.DistinctCount = len(cart.Items)
	for _, item := range cart.Items {
		cart.UnitCount += item.Quantity
	}
	return cart
}
