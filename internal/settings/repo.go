package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
)

// Repository is the persistence surface for site settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (r *repository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&models.Setting{}).Error
}
