package listing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoomlabs/hoom/internal/cache"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// CacheKey is the cache slot holding the listings page data.
const CacheKey = "listings"

// DefaultTTL is how long the listings page data stays cached.
const DefaultTTL = 600 * time.Second

// Snapshot is one load of the dashboard: every listing joined with its
// promoter, and every promoter (id and name) for the selectors.
type Snapshot struct {
	Listings  []View              `json:"listings"`
	Promoters []promoter.Promoter `json:"promoters"`
	LoadedAt  time.Time           `json:"loaded_at"`
}

// Find returns the loaded listing with id.
func (s *Snapshot) Find(id int64) (View, bool) {
	for _, v := range s.Listings {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// Loader reads snapshots through the shared cache.
type Loader struct {
	listings  *Repository
	promoters *promoter.Repository
	cache     *cache.Store
	ttl       time.Duration
}

// NewLoader creates a loader. A non-positive ttl uses DefaultTTL.
func NewLoader(listings *Repository, promoters *promoter.Repository, c *cache.Store, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{listings: listings, promoters: promoters, cache: c, ttl: ttl}
}

// Load returns the cached snapshot, reading the store when the slot is
// empty or expired.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	return cache.Load(ctx, l.cache, CacheKey, l.ttl, l.read)
}

func (l *Loader) read(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Listings:  []View{},
		Promoters: []promoter.Promoter{},
		LoadedAt:  time.Now().UTC(),
	}

	views, err := l.listings.ListWithPromoters(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading listings: %w", err)
	}
	if len(views) == 0 {
		slog.Info("no listings in store")
		return snap, nil
	}
	snap.Listings = views

	names, err := l.promoters.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading promoters: %w", err)
	}
	snap.Promoters = names

	slog.Info("dashboard loaded", "listings", len(snap.Listings), "promoters", len(snap.Promoters))
	return snap, nil
}
