package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	"github.com/omerfdemir/teklifix-backend/pkg/pagination"
)

// QuoteFilter narrows a quote listing.
type QuoteFilter struct {
	Status *enums.QuoteStatus
	Email  string
	Limit  int
	Cursor *pagination.Cursor
}

// Repository is the persistence surface for quote rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Update(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	List(ctx context.Context, filter QuoteFilter) ([]models.Quote, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) Update(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Save(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) List(ctx context.Context, filter QuoteFilter) ([]models.Quote, error) {
	query := r.db.WithContext(ctx).Model(&models.Quote{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.Quote
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
