package listing

import (
	"time"

	"github.com/hoomlabs/hoom/internal/store"
)

// fromRow decodes a properties row with its promoter embedded under
// promoter_id. Unparseable numbers become nil, a missing portal becomes
// UnknownPortal and an absent or malformed promoter becomes NoPromoter.
func fromRow(r store.Row) (View, bool) {
	id, ok := store.AsInt64(r["id"])
	if !ok {
		return View{}, false
	}

	v := View{Listing: Listing{
		ID:               id,
		Title:            store.AsString(r["title"]),
		Price:            floatPtr(r["price"]),
		LocationText:     store.AsString(r["location_text"]),
		Description:      store.AsString(r["description"]),
		PropertyType:     store.AsString(r["property_type"]),
		SourcePortal:     store.AsString(r["source_portal"]),
		Latitude:         floatPtr(r["latitude"]),
		Longitude:        floatPtr(r["longitude"]),
		ConstructionArea: intPtr(r["construction_area_m2"]),
		LandArea:         intPtr(r["land_area_m2"]),
		Bedrooms:         intPtr(r["bedrooms"]),
		FullBathrooms:    intPtr(r["full_bathrooms"]),
		HalfBathrooms:    intPtr(r["half_bathrooms"]),
		ParkingSpaces:    intPtr(r["parking_spaces"]),
		Levels:           intPtr(r["levels"]),
		Photos:           store.AsStrings(r["photos"]),
		PropertyURL:      store.AsString(r["property_url"]),
		CreatedAt:        datePtr(r["created_at"]),
	}}

	if v.SourcePortal == "" {
		v.SourcePortal = UnknownPortal
	}

	v.PromoterName = NoPromoter
	if p, ok := store.Nested(r["promoter_id"]); ok {
		name, named := p["name"].(string)
		if id := intPtr(p["id"]); named && id != nil {
			v.PromoterName = name
			v.PromoterID = id
		}
	}

	return v, true
}

func floatPtr(v any) *float64 {
	f, ok := store.AsFloat64(v)
	if !ok {
		return nil
	}
	return &f
}

func intPtr(v any) *int64 {
	i, ok := store.AsInt64(v)
	if !ok {
		return nil
	}
	return &i
}

// datePtr keeps only the calendar date of a timestamp.
func datePtr(v any) *time.Time {
	t, ok := store.AsTime(v)
	if !ok {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
