package promoter

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoomlabs/hoom/internal/cache"
	"github.com/hoomlabs/hoom/internal/db"
	"github.com/hoomlabs/hoom/internal/store"
	"github.com/hoomlabs/hoom/internal/store/sqlstore"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"name present", Input{Name: "Acme"}, false},
		{"empty name", Input{Company: "Acme SA"}, true},
		{"blank name", Input{Name: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr && !errors.Is(err, ErrNameRequired) {
				t.Errorf("err = %v, want ErrNameRequired", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaveCreatesWhenNoID(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, 0, Input{Name: " Acme ", Company: "Acme SA", Email: "ventas@acme.mx"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	promoters, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(promoters) != 1 {
		t.Fatalf("got %d promoters, want 1", len(promoters))
	}
	if promoters[0].Name != "Acme" {
		t.Errorf("name = %q, want trimmed Acme", promoters[0].Name)
	}
	if promoters[0].Email != "ventas@acme.mx" {
		t.Errorf("email = %q", promoters[0].Email)
	}
}

func TestSaveUpdatesSelected(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, 0, Input{Name: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := svc.Save(ctx, 1, Input{Name: "Acme Inmobiliaria", Phone: "555-1234"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Acme Inmobiliaria" || p.Phone != "555-1234" {
		t.Errorf("promoter = %+v, want updated fields", p)
	}
}

func TestSaveEmptyNameSkipsStore(t *testing.T) {
	svc, counter := testService(t)

	err := svc.Save(context.Background(), 0, Input{Company: "Sin nombre"})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("err = %v, want ErrNameRequired", err)
	}
	if counter.writes != 0 {
		t.Errorf("writes = %d, want 0", counter.writes)
	}
}

func TestSaveUnknownID(t *testing.T) {
	svc, _ := testService(t)

	err := svc.Save(context.Background(), 99, Input{Name: "Nadie"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteUnreferenced(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, 0, Input{Name: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	promoters, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(promoters) != 0 {
		t.Errorf("got %d promoters, want 0", len(promoters))
	}
}

func TestDeleteReferencedLeavesEverything(t *testing.T) {
	svc, counter := testService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, 0, Input{Name: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := counter.Insert(ctx, store.TableProperties, store.Row{"title": "Casa", "promoter_id": int64(1)}); err != nil {
		t.Fatalf("insert listing: %v", err)
	}

	err := svc.Delete(ctx, 1)
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("err = %v, want ErrInUse", err)
	}

	p, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.Listings) != 1 || p.Listings[0].Title != "Casa" {
		t.Errorf("listings = %+v, want the referencing listing intact", p.Listings)
	}
}

func TestLoadOrdersByNameWithListings(t *testing.T) {
	svc, counter := testService(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alfa"} {
		if err := svc.Save(ctx, 0, Input{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := counter.Insert(ctx, store.TableProperties, store.Row{
		"title": "Depto", "price": 1500000.0, "property_type": "departamento", "promoter_id": int64(1),
	}); err != nil {
		t.Fatalf("insert listing: %v", err)
	}

	promoters, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if promoters[0].Name != "Alfa" || promoters[1].Name != "Zeta" {
		t.Fatalf("order = %s, %s; want Alfa, Zeta", promoters[0].Name, promoters[1].Name)
	}
	if len(promoters[0].Listings) != 0 {
		t.Errorf("Alfa listings = %d, want 0", len(promoters[0].Listings))
	}
	zeta := promoters[1].Listings
	if len(zeta) != 1 || zeta[0].Price == nil || *zeta[0].Price != 1500000 {
		t.Errorf("Zeta listings = %+v", zeta)
	}
}

func TestLoadIsCached(t *testing.T) {
	svc, counter := testService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if counter.selects != 1 {
		t.Errorf("selects = %d, want 1", counter.selects)
	}

	if err := svc.Save(ctx, 0, Input{Name: "Acme"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if counter.selects != 2 {
		t.Errorf("selects = %d after save, want 2", counter.selects)
	}
}

// countingStore records how often the store is hit.
type countingStore struct {
	store.TableStore
	selects int
	writes  int
}

func (c *countingStore) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	c.selects++
	return c.TableStore.Select(ctx, table, q)
}

func (c *countingStore) Insert(ctx context.Context, table string, rec store.Row) error {
	c.writes++
	return c.TableStore.Insert(ctx, table, rec)
}

func (c *countingStore) Update(ctx context.Context, table string, id int64, rec store.Row) error {
	c.writes++
	return c.TableStore.Update(ctx, table, id, rec)
}

func (c *countingStore) Delete(ctx context.Context, table string, id int64) error {
	c.writes++
	return c.TableStore.Delete(ctx, table, id)
}

func testService(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	counter := &countingStore{TableStore: sqlstore.New(d, db.SQLite)}
	return NewService(NewRepository(counter), cache.New(), time.Minute), counter
}
