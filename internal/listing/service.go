package listing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hoomlabs/hoom/internal/cache"
)

// Service runs the listing edit/delete flow. Every write goes to the
// store first and the cache is cleared only after it succeeds, so a
// failed write leaves nothing changed.
type Service struct {
	repo   *Repository
	loader *Loader
	cache  *cache.Store
}

// NewService creates a listing service sharing the dashboard cache.
func NewService(repo *Repository, loader *Loader, c *cache.Store) *Service {
	return &Service{repo: repo, loader: loader, cache: c}
}

// Snapshot returns the current dashboard data.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.loader.Load(ctx)
}

// Get returns a loaded listing by id.
func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return View{}, err
	}
	v, ok := snap.Find(id)
	if !ok {
		return View{}, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return v, nil
}

// Edit writes every editable field of listing id.
func (s *Service) Edit(ctx context.Context, id int64, u Update) error {
	if err := s.repo.Update(ctx, id, u); err != nil {
		slog.Warn("listing update failed", "id", id, "error", err)
		return err
	}
	slog.Info("listing updated", "id", id, "title", u.Title)
	s.cache.Clear()
	return nil
}

// Delete removes listing id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		slog.Warn("listing delete failed", "id", id, "error", err)
		return err
	}
	slog.Info("listing deleted", "id", id)
	s.cache.Clear()
	return nil
}

// SetPrimaryPhoto makes photo the first photo of listing id. Choosing the
// current primary photo writes nothing.
func (s *Service) SetPrimaryPhoto(ctx context.Context, id int64, photo string) error {
	return s.reorder(ctx, id, photo, "primary", SetPrimary)
}

// RemovePhoto drops photo from listing id.
func (s *Service) RemovePhoto(ctx context.Context, id int64, photo string) error {
	return s.reorder(ctx, id, photo, "remove", RemovePhoto)
}

func (s *Service) reorder(ctx context.Context, id int64, photo, op string, fn func([]string, string) ([]string, error)) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	photos, err := fn(v.Photos, photo)
	if err != nil {
		return fmt.Errorf("property %d: %w", id, err)
	}
	if slices.Equal(photos, v.Photos) {
		return nil
	}

	if err := s.repo.UpdatePhotos(ctx, id, photos); err != nil {
		slog.Warn("listing photos update failed", "id", id, "op", op, "error", err)
		return err
	}
	slog.Info("listing photos updated", "id", id, "op", op, "photos", len(photos))
	s.cache.Clear()
	return nil
}

// Import inserts listings, stopping at the first failure. It returns how
// many were inserted.
func (s *Service) Import(ctx context.Context, listings []Listing) (int, error) {
	n := 0
	for _, l := range listings {
		if err := s.repo.Insert(ctx, l); err != nil {
			if n > 0 {
				s.cache.Clear()
			}
			return n, fmt.Errorf("importing %q: %w", l.Title, err)
		}
		n++
	}
	if n > 0 {
		slog.Info("listings imported", "count", n)
		s.cache.Clear()
	}
	return n, nil
}

// Reload clears every cached load.
func (s *Service) Reload() {
	slog.Info("reload requested")
	s.cache.Clear()
}
