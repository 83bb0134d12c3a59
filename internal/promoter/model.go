// Package promoter provides the promoter entity, its data access and the
// management flow behind the promoters page.
package promoter

import (
	"errors"
	"strings"

	"github.com/hoomlabs/hoom/internal/store"
)

var (
	// ErrNameRequired is returned when saving a promoter without a name.
	ErrNameRequired = errors.New("promoter name is required")

	// ErrInUse is returned when deleting a promoter that listings still
	// reference.
	ErrInUse = errors.New("promoter is still assigned to one or more listings")

	// ErrNotFound is returned for an unknown promoter id.
	ErrNotFound = errors.New("promoter not found")
)

// Promoter is an agent or company listings can be attributed to.
type Promoter struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Company  string           `json:"company,omitempty"`
	Phone    string           `json:"phone,omitempty"`
	Email    string           `json:"email,omitempty"`
	Listings []ListingSummary `json:"listings,omitempty"`
}

// ListingSummary is the slice of a listing shown in a promoter's drill-down.
type ListingSummary struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Price        *float64 `json:"price,omitempty"`
	LocationText string   `json:"location_text,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
}

// Input holds the editable promoter fields.
type Input struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// InputFrom pre-fills the form fields from an existing promoter.
func InputFrom(p Promoter) Input {
	return Input{Name: p.Name, Company: p.Company, Phone: p.Phone, Email: p.Email}
}

// Validate checks the only business rule: a name is required.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (in Input) row() store.Row {
	return store.Row{
		"name":    strings.TrimSpace(in.Name),
		"company": strings.TrimSpace(in.Company),
		"phone":   strings.TrimSpace(in.Phone),
		"email":   strings.TrimSpace(in.Email),
	}
}

// fromRow decodes a promoter row. Rows without a usable id are rejected.
func fromRow(r store.Row) (Promoter, bool) {
	id, ok := store.AsInt64(r["id"])
	if !ok {
		return Promoter{}, false
	}

	p := Promoter{
		ID:      id,
		Name:    store.AsString(r["name"]),
		Company: store.AsString(r["company"]),
		Phone:   store.AsString(r["phone"]),
		Email:   store.AsString(r["email"]),
	}

	for _, lr := range store.NestedRows(r[store.TableProperties]) {
		lid, ok := store.AsInt64(lr["id"])
		if !ok {
			continue
		}
		s := ListingSummary{
			ID:           lid,
			Title:        store.AsString(lr["title"]),
			LocationText: store.AsString(lr["location_text"]),
			PropertyType: store.AsString(lr["property_type"]),
		}
		if price, ok := store.AsFloat64(lr["price"]); ok {
			s.Price = &price
		}
		p.Listings = append(p.Listings, s)
	}

	return p, true
}
