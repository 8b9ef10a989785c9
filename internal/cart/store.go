package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/omerfdemir/teklifix-backend/pkg/config"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	redisclient "github.com/omerfdemir/teklifix-backend/pkg/redis"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

type snapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type snapshotKeyer interface {
	CartKey(token string) string
}

// Snapshot is the persisted cart payload for one browsing session.
type Snapshot struct {
	Items []types.QuoteItem `json:"items"`
}

// Store persists cart snapshots in Redis keyed by the opaque cart token.
type Store struct {
	store snapshotStore
	keyer snapshotKeyer
	ttl   time.Duration
	logg  *logger.Logger
}

// NewStore builds a Redis-backed cart snapshot store.
func NewStore(client *redisclient.Client, cfg config.CartConfig, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SnapshotTTL <= 0 {
		return nil, fmt.Errorf("cart snapshot ttl must be positive")
	}
	return &Store{
		store: client,
		keyer: client,
		ttl:   cfg.SnapshotTTL,
		logg:  logg,
	}, nil
}

// Load returns the stored snapshot for the token. A missing or unreadable
// snapshot yields an empty cart rather than an error.
func (s *Store) Load(ctx context.Context, token string) (Snapshot, error) {
	raw, err := s.store.Get(ctx, s.keyer.CartKey(token))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cart_token", token), "cart.snapshot.corrupt")
		}
		return Snapshot{}, nil
	}
	return snap, nil
}

// Save writes the snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, token string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart snapshot")
	}
	if err := s.store.Set(ctx, s.keyer.CartKey(token), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

// Clear removes the snapshot for the token.
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.store.Del(ctx, s.keyer.CartKey(token)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}
