package promoter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoomlabs/hoom/internal/cache"
)

// CacheKey is the cache slot holding the promoters page data.
const CacheKey = "promoters"

// DefaultTTL is how long the promoters page data stays cached.
const DefaultTTL = 60 * time.Second

// Service runs the promoter management flow: load, create or update,
// delete, and cache invalidation after every write.
type Service struct {
	repo  *Repository
	cache *cache.Store
	ttl   time.Duration
}

// NewService creates a promoter service sharing the dashboard cache.
func NewService(repo *Repository, c *cache.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// Load returns the promoters with their listings, cached for the TTL.
func (s *Service) Load(ctx context.Context) ([]Promoter, error) {
	return cache.Load(ctx, s.cache, CacheKey, s.ttl, s.repo.List)
}

// Get returns a loaded promoter by id.
func (s *Service) Get(ctx context.Context, id int64) (Promoter, error) {
	promoters, err := s.Load(ctx)
	if err != nil {
		return Promoter{}, err
	}
	for _, p := range promoters {
		if p.ID == id {
			return p, nil
		}
	}
	return Promoter{}, fmt.Errorf("promoter %d: %w", id, ErrNotFound)
}

// Save updates promoter id, or inserts a new promoter when id is 0.
// Invalid input never reaches the store.
func (s *Service) Save(ctx context.Context, id int64, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if id != 0 {
		if err := s.repo.Update(ctx, id, in); err != nil {
			return err
		}
		slog.Info("promoter updated", "id", id, "name", in.Name)
	} else {
		if err := s.repo.Create(ctx, in); err != nil {
			return err
		}
		slog.Info("promoter created", "name", in.Name)
	}

	s.cache.Clear()
	return nil
}

// Delete removes promoter id. A promoter still referenced by listings is
// left untouched and ErrInUse is returned.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		slog.Warn("promoter delete failed", "id", id, "error", err)
		return err
	}
	slog.Info("promoter deleted", "id", id)
	s.cache.Clear()
	return nil
}
