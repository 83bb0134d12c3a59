package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoomlabs/hoom/internal/store"
)

// Repository provides CRUD operations for listings.
type Repository struct {
	store store.TableStore
}

// NewRepository creates a listing repository.
func NewRepository(s store.TableStore) *Repository {
	return &Repository{store: s}
}

var promoterEmbed = store.Embed{Table: store.TablePromoters, Column: "promoter_id"}

// ListWithPromoters returns every listing with its promoter flattened in,
// in store order.
func (r *Repository) ListWithPromoters(ctx context.Context) ([]View, error) {
	rows, err := r.store.Select(ctx, store.TableProperties, store.Query{
		Embed: []store.Embed{promoterEmbed},
	})
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		if v, ok := fromRow(row); ok {
			views = append(views, v)
		}
	}
	return views, nil
}

// Insert adds a new listing.
func (r *Repository) Insert(ctx context.Context, l Listing) error {
	if err := r.store.Insert(ctx, store.TableProperties, l.row()); err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// Update writes every editable field of listing id.
func (r *Repository) Update(ctx context.Context, id int64, u Update) error {
	return r.update(ctx, id, u.row())
}

// UpdatePhotos writes only the photos of listing id.
func (r *Repository) UpdatePhotos(ctx context.Context, id int64, photos []string) error {
	return r.update(ctx, id, store.Row{"photos": nonNil(photos)})
}

func (r *Repository) update(ctx context.Context, id int64, rec store.Row) error {
	err := r.store.Update(ctx, store.TableProperties, id, rec)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating property %d: %w", id, err)
	}
	return nil
}

// Delete removes listing id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	err := r.store.Delete(ctx, store.TableProperties, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting property %d: %w", id, err)
	}
	return nil
}
