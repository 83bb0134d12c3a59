// Package listing provides the listing entity, the dashboard loader and
// filter, and the edit/delete flow over the table store.
package listing

import (
	"errors"
	"time"

	"github.com/hoomlabs/hoom/internal/store"
)

// Sentinel values shown when data is missing.
const (
	UnknownPortal = "unknown"
	NoPromoter    = "No Promoter"
	AllTypes      = "All"
)

var (
	// ErrNotFound is returned for an unknown listing id.
	ErrNotFound = errors.New("listing not found")

	// ErrPhotoNotFound is returned when a photo is not part of the
	// listing's photo sequence.
	ErrPhotoNotFound = errors.New("photo is not part of this listing")
)

// Listing is a property record as stored in the properties table.
// Photos[0], when present, is the primary photo.
type Listing struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Price            *float64   `json:"price"`
	LocationText     string     `json:"location_text"`
	Description      string     `json:"description"`
	PropertyType     string     `json:"property_type"`
	SourcePortal     string     `json:"source_portal"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	ConstructionArea *int64     `json:"construction_area_m2"`
	LandArea         *int64     `json:"land_area_m2"`
	Bedrooms         *int64     `json:"bedrooms"`
	FullBathrooms    *int64     `json:"full_bathrooms"`
	HalfBathrooms    *int64     `json:"half_bathrooms"`
	ParkingSpaces    *int64     `json:"parking_spaces"`
	Levels           *int64     `json:"levels"`
	Photos           []string   `json:"photos"`
	PropertyURL      string     `json:"property_url"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	PromoterID       *int64     `json:"promoter_id"`
}

// View is a listing joined with its promoter, the shape every page and
// the filter work on.
type View struct {
	Listing
	PromoterName string `json:"promoter_name"`
}

// PrimaryPhoto returns the first photo, or "" when there are none.
func (l Listing) PrimaryPhoto() string {
	if len(l.Photos) == 0 {
		return ""
	}
	return l.Photos[0]
}

// HasLocation reports whether both coordinates are known.
func (l Listing) HasLocation() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// row returns the insertable columns of l. Unset values are left out so
// the store defaults apply.
func (l Listing) row() store.Row {
	rec := store.Row{
		"title":         l.Title,
		"location_text": l.LocationText,
		"description":   l.Description,
		"property_type": l.PropertyType,
		"property_url":  l.PropertyURL,
		"photos":        nonNil(l.Photos),
	}
	if l.SourcePortal != "" {
		rec["source_portal"] = l.SourcePortal
	}
	setIf(rec, "price", l.Price)
	setIf(rec, "latitude", l.Latitude)
	setIf(rec, "longitude", l.Longitude)
	setIf(rec, "construction_area_m2", l.ConstructionArea)
	setIf(rec, "land_area_m2", l.LandArea)
	setIf(rec, "bedrooms", l.Bedrooms)
	setIf(rec, "full_bathrooms", l.FullBathrooms)
	setIf(rec, "half_bathrooms", l.HalfBathrooms)
	setIf(rec, "parking_spaces", l.ParkingSpaces)
	setIf(rec, "levels", l.Levels)
	setIf(rec, "promoter_id", l.PromoterID)
	return rec
}

// Update holds every field the edit form can change. Nil pointers clear
// the column.
type Update struct {
	Title            string   `json:"title"`
	Price            *float64 `json:"price"`
	LocationText     string   `json:"location_text"`
	Description      string   `json:"description"`
	ConstructionArea *int64   `json:"construction_area_m2"`
	LandArea         *int64   `json:"land_area_m2"`
	Bedrooms         *int64   `json:"bedrooms"`
	FullBathrooms    *int64   `json:"full_bathrooms"`
	HalfBathrooms    *int64   `json:"half_bathrooms"`
	ParkingSpaces    *int64   `json:"parking_spaces"`
	Levels           *int64   `json:"levels"`
	PromoterID       *int64   `json:"promoter_id"`
}

// UpdateFrom pre-fills an edit from the current listing.
func UpdateFrom(l Listing) Update {
	return Update{
		Title:            l.Title,
		Price:            l.Price,
		LocationText:     l.LocationText,
		Description:      l.Description,
		ConstructionArea: l.ConstructionArea,
		LandArea:         l.LandArea,
		Bedrooms:         l.Bedrooms,
		FullBathrooms:    l.FullBathrooms,
		HalfBathrooms:    l.HalfBathrooms,
		ParkingSpaces:    l.ParkingSpaces,
		Levels:           l.Levels,
		PromoterID:       l.PromoterID,
	}
}

// row returns the full-field update record.
func (u Update) row() store.Row {
	return store.Row{
		"title":                u.Title,
		"price":                nullable(u.Price),
		"location_text":        u.LocationText,
		"description":          u.Description,
		"construction_area_m2": nullable(u.ConstructionArea),
		"land_area_m2":         nullable(u.LandArea),
		"bedrooms":             nullable(u.Bedrooms),
		"full_bathrooms":       nullable(u.FullBathrooms),
		"half_bathrooms":       nullable(u.HalfBathrooms),
		"parking_spaces":       nullable(u.ParkingSpaces),
		"levels":               nullable(u.Levels),
		"promoter_id":          nullable(u.PromoterID),
	}
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func setIf[T any](rec store.Row, key string, p *T) {
	if p != nil {
		rec[key] = *p
	}
}

func nonNil(photos []string) []string {
	if photos == nil {
		return []string{}
	}
	return photos
}
