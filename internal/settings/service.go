package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
)

const maxSettingValueLen = 8192

// Service exposes the site settings key/value store. The whole map is
// public read; writes are admin-only at the routing layer.
type Service interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo Repository
}

// NewService builds a settings service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, key string) (*models.Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	return setting, nil
}

func (s *service) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if len(value) > maxSettingValueLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value too long")
	}

	setting, err := s.repo.Upsert(ctx, &models.Setting{Key: key, Value: value})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	return setting, nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete setting")
	}
	return nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	return key, nil
}
