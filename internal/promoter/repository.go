package promoter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoomlabs/hoom/internal/store"
)

// Repository provides CRUD operations for promoters.
type Repository struct {
	store store.TableStore
}

// NewRepository creates a promoter repository.
func NewRepository(s store.TableStore) *Repository {
	return &Repository{store: s}
}

// listingEmbed pulls each promoter's listings for the drill-down.
var listingEmbed = store.Embed{
	Table:   store.TableProperties,
	Column:  "promoter_id",
	Columns: []string{"id", "title", "price", "location_text", "property_type"},
	Reverse: true,
}

// List returns every promoter with its listings, ordered by name.
func (r *Repository) List(ctx context.Context) ([]Promoter, error) {
	rows, err := r.store.Select(ctx, store.TablePromoters, store.Query{
		Embed: []store.Embed{listingEmbed},
		Order: "name",
	})
	if err != nil {
		return nil, fmt.Errorf("listing promoters: %w", err)
	}
	return decodeRows(rows), nil
}

// ListNames returns id and name of every promoter in store order.
func (r *Repository) ListNames(ctx context.Context) ([]Promoter, error) {
	rows, err := r.store.Select(ctx, store.TablePromoters, store.Query{Columns: []string{"id", "name"}})
	if err != nil {
		return nil, fmt.Errorf("listing promoter names: %w", err)
	}
	return decodeRows(rows), nil
}

// Create inserts a new promoter.
func (r *Repository) Create(ctx context.Context, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := r.store.Insert(ctx, store.TablePromoters, in.row()); err != nil {
		return fmt.Errorf("creating promoter: %w", err)
	}
	return nil
}

// Update replaces the fields of promoter id.
func (r *Repository) Update(ctx context.Context, id int64, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	err := r.store.Update(ctx, store.TablePromoters, id, in.row())
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("promoter %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating promoter %d: %w", id, err)
	}
	return nil
}

// Delete removes promoter id. Referenced promoters are not deleted and
// ErrInUse is returned.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	err := r.store.Delete(ctx, store.TablePromoters, id)
	switch {
	case errors.Is(err, store.ErrReferenced):
		return fmt.Errorf("promoter %d: %w: %w", id, ErrInUse, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("promoter %d: %w", id, ErrNotFound)
	case err != nil:
		return fmt.Errorf("deleting promoter %d: %w", id, err)
	}
	return nil
}

func decodeRows(rows []store.Row) []Promoter {
	promoters := make([]Promoter, 0, len(rows))
	for _, row := range rows {
		if p, ok := fromRow(row); ok {
			promoters = append(promoters, p)
		}
	}
	return promoters
}
