package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hoomlabs/hoom/internal/db"
	"github.com/hoomlabs/hoom/internal/store"
)

func TestInsertAndSelect(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, store.TablePromoters, store.Row{"name": "Acme", "company": "Acme SA"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := s.Select(ctx, store.TablePromoters, store.Query{})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["name"] != "Acme" {
		t.Errorf("name = %v, want Acme", rows[0]["name"])
	}
	if rows[0]["phone"] != nil {
		t.Errorf("phone = %v, want nil", rows[0]["phone"])
	}
}

func TestSelectColumnsAndOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alfa"} {
		if err := s.Insert(ctx, store.TablePromoters, store.Row{"name": name}); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	rows, err := s.Select(ctx, store.TablePromoters, store.Query{Columns: []string{"name"}, Order: "name"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["name"] != "Alfa" || rows[1]["name"] != "Zeta" {
		t.Errorf("order = %v, %v; want Alfa, Zeta", rows[0]["name"], rows[1]["name"])
	}
	if _, ok := rows[0]["company"]; ok {
		t.Error("expected company not to be selected")
	}
}

func TestForwardEmbed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Acme"})
	mustInsert(t, s, store.TableProperties, store.Row{"title": "Con promotor", "promoter_id": int64(1)})
	mustInsert(t, s, store.TableProperties, store.Row{"title": "Sin promotor"})

	rows, err := s.Select(ctx, store.TableProperties, store.Query{
		Embed: []store.Embed{{Table: store.TablePromoters, Column: "promoter_id"}},
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	rel, ok := rows[0]["promoter_id"].(store.Row)
	if !ok {
		t.Fatalf("promoter_id = %T, want store.Row", rows[0]["promoter_id"])
	}
	if rel["name"] != "Acme" {
		t.Errorf("embedded name = %v, want Acme", rel["name"])
	}
	if rows[1]["promoter_id"] != nil {
		t.Errorf("expected nil embed, got %v", rows[1]["promoter_id"])
	}
}

func TestReverseEmbed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Acme"})
	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Vacío"})
	mustInsert(t, s, store.TableProperties, store.Row{"title": "Casa 1", "promoter_id": int64(1)})
	mustInsert(t, s, store.TableProperties, store.Row{"title": "Casa 2", "promoter_id": int64(1)})

	rows, err := s.Select(ctx, store.TablePromoters, store.Query{
		Embed: []store.Embed{{
			Table:   store.TableProperties,
			Column:  "promoter_id",
			Columns: []string{"id", "title"},
			Reverse: true,
		}},
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	first, ok := rows[0][store.TableProperties].([]store.Row)
	if !ok {
		t.Fatalf("properties = %T, want []store.Row", rows[0][store.TableProperties])
	}
	if len(first) != 2 {
		t.Errorf("got %d children, want 2", len(first))
	}
	second, ok := rows[1][store.TableProperties].([]store.Row)
	if !ok || len(second) != 0 {
		t.Errorf("expected empty children, got %v", rows[1][store.TableProperties])
	}
}

func TestJSONColumnRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, store.TableProperties, store.Row{"title": "Casa", "photos": []string{"a.jpg", "b.jpg"}})

	rows, err := s.Select(ctx, store.TableProperties, store.Query{Columns: []string{"photos"}})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	photos, ok := rows[0]["photos"].([]any)
	if !ok {
		t.Fatalf("photos = %T, want []any", rows[0]["photos"])
	}
	if len(photos) != 2 || photos[0] != "a.jpg" || photos[1] != "b.jpg" {
		t.Errorf("photos = %v", photos)
	}

	if err := s.Update(ctx, store.TableProperties, 1, store.Row{"photos": []string{"b.jpg", "a.jpg"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, err = s.Select(ctx, store.TableProperties, store.Query{Columns: []string{"photos"}})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	photos = rows[0]["photos"].([]any)
	if photos[0] != "b.jpg" {
		t.Errorf("first photo = %v, want b.jpg", photos[0])
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := testStore(t)

	err := s.Update(context.Background(), store.TablePromoters, 42, store.Row{"name": "X"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNoColumns(t *testing.T) {
	s := testStore(t)
	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Acme"})

	if err := s.Update(context.Background(), store.TablePromoters, 1, store.Row{}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Acme"})

	if err := s.Delete(ctx, store.TablePromoters, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, store.TablePromoters, 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReferencedPromoter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, store.TablePromoters, store.Row{"name": "Acme"})
	mustInsert(t, s, store.TableProperties, store.Row{"title": "Casa", "promoter_id": int64(1)})

	err := s.Delete(ctx, store.TablePromoters, 1)
	if !errors.Is(err, store.ErrReferenced) {
		t.Fatalf("err = %v, want ErrReferenced", err)
	}

	rows, err := s.Select(ctx, store.TablePromoters, store.Query{})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected promoter to remain, got %d rows", len(rows))
	}
}

func TestRejectsInvalidIdentifiers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Select(ctx, "promoters; DROP TABLE promoters", store.Query{}); err == nil {
		t.Error("expected error for invalid table")
	}
	if err := s.Insert(ctx, store.TablePromoters, store.Row{"name = 1 --": "x"}); err == nil {
		t.Error("expected error for invalid column")
	}
}

func testStore(t *testing.T) *Store {
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
	return New(d, db.SQLite)
}

func mustInsert(t *testing.T, s *Store, table string, rec store.Row) {
	t.Helper()
	if err := s.Insert(context.Background(), table, rec); err != nil {
		t.Fatalf("insert into %s: %v", table, err)
	}
}
