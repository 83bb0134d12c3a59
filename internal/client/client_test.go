package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoomlabs/hoom/internal/cache"
	"github.com/hoomlabs/hoom/internal/db"
	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
	"github.com/hoomlabs/hoom/internal/store/sqlstore"
	"github.com/hoomlabs/hoom/internal/web"
)

func TestListListingsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings" {
			t.Errorf("path = %q, want /api/listings", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q["promoter"]; len(got) != 2 || got[1] != listing.NoPromoter {
			t.Errorf("promoter = %v", got)
		}
		if q.Get("max") != "2500000" || q.Get("exclude") != "false" || q.Has("min") {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ListingsResponse{Listings: []listing.View{{Listing: listing.Listing{ID: 7, Title: "Casa"}}}}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	maxPrice := 2500000.0
	c := New(srv.URL)
	resp, err := c.ListListings(ListOptions{
		Promoters: []string{"Acme", listing.NoPromoter},
		MaxPrice:  &maxPrice,
		NoExclude: true,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Listings) != 1 || resp.Listings[0].Title != "Casa" {
		t.Errorf("listings = %+v", resp.Listings)
	}
}

func TestListListingsNoQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"listings":[]}`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	if _, err := New(srv.URL).ListListings(ListOptions{}); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		if _, err := w.Write([]byte(`{"error":"promoter in use"}`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	err := New(srv.URL).DeletePromoter(1)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "promoter in use" {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestErrorResponseWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetListing(1)
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("err = %v", err)
	}
}

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if err := New(url).Reload(); err == nil {
		t.Error("expected connection error")
	}
}

// TestAgainstServer drives the real API over a SQLite-backed server.
func TestAgainstServer(t *testing.T) {
	c := New(testAPI(t))

	price := 1200000.0
	n, err := c.ImportListings([]listing.Listing{
		{Title: "Casa Jurica", Price: &price, SourcePortal: "lamudi", PropertyType: "casa",
			Photos: []string{"a.jpg", "b.jpg"}},
		{Title: "Fraccionamiento El Refugio", Price: &price, PropertyType: "casa"},
	})
	if err != nil || n != 2 {
		t.Fatalf("import = %d, %v", n, err)
	}

	if err := c.SavePromoter(0, promoter.Input{Name: "Acme"}); err != nil {
		t.Fatalf("save promoter: %v", err)
	}
	promoters, err := c.ListPromoters()
	if err != nil || len(promoters) != 1 {
		t.Fatalf("promoters = %v, %v", promoters, err)
	}

	v, err := c.GetListing(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	u := listing.UpdateFrom(v.Listing)
	u.PromoterID = &promoters[0].ID
	v, err = c.UpdateListing(1, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.PromoterName != "Acme" {
		t.Errorf("promoter = %q, want Acme", v.PromoterName)
	}

	v, err = c.SetPrimaryPhoto(1, "b.jpg")
	if err != nil || v.PrimaryPhoto() != "b.jpg" {
		t.Fatalf("set primary = %v, %v", v, err)
	}
	if _, err := c.RemovePhoto(1, "missing.jpg"); err == nil {
		t.Error("expected error removing unknown photo")
	}

	resp, err := c.ListListings(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Listings) != 1 || resp.Summary.Total != 2 {
		t.Errorf("shown %d of %d, want 1 of 2", len(resp.Listings), resp.Summary.Total)
	}

	if err := c.DeletePromoter(promoters[0].ID); err == nil {
		t.Error("expected referenced promoter delete to fail")
	}
	if err := c.DeleteListing(2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	s, err := c.Summary(ListOptions{NoExclude: true})
	if err != nil || s.Total != 1 {
		t.Errorf("summary = %+v, %v", s, err)
	}
	if err := c.Reload(); err != nil {
		t.Errorf("reload: %v", err)
	}
}

func testAPI(t *testing.T) string {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	ts := sqlstore.New(d, db.SQLite)
	c := cache.New()
	promoterRepo := promoter.NewRepository(ts)
	listingRepo := listing.NewRepository(ts)
	loader := listing.NewLoader(listingRepo, promoterRepo, c, time.Minute)

	srv, err := web.NewServer(
		listing.NewService(listingRepo, loader, c),
		promoter.NewService(promoterRepo, c, time.Minute),
		web.Options{},
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	return hs.URL
}
