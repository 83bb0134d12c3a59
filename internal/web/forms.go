package web

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// parseCriteria reads filter predicates from a query. Without the f
// marker (the filter form was never submitted) each absent parameter
// keeps its default; with it, absent lists mean nothing selected and an
// absent exclude means exclusion off.
func parseCriteria(q url.Values, opts listing.Options, excludeTitle string) (listing.Criteria, error) {
	c := opts.Defaults(excludeTitle)
	submitted := q.Get("f") != ""

	if submitted || q.Has("portal") {
		c.Portals = q["portal"]
	}
	if submitted || q.Has("promoter") {
		c.Promoters = q["promoter"]
	}

	var err error
	if v := strings.TrimSpace(q.Get("min")); v != "" {
		if c.MinPrice, err = parseNumber(v); err != nil {
			return c, &inputError{field: "min price", err: err}
		}
	}
	if v := strings.TrimSpace(q.Get("max")); v != "" {
		if c.MaxPrice, err = parseNumber(v); err != nil {
			return c, &inputError{field: "max price", err: err}
		}
	}
	if v := q.Get("type"); v != "" {
		c.PropertyType = v
	}

	switch v := q.Get("exclude"); {
	case v == "on":
		c.Exclude = true
	case v != "":
		if c.Exclude, err = strconv.ParseBool(v); err != nil {
			return c, &inputError{field: "exclude", err: err}
		}
	case submitted:
		c.Exclude = false
	}

	return c, nil
}

// parseListingUpdate reads the edit form. Empty numeric fields clear the
// value; anything else that does not parse is rejected.
func parseListingUpdate(form url.Values) (listing.Update, error) {
	u := listing.Update{
		Title:        strings.TrimSpace(form.Get("title")),
		LocationText: strings.TrimSpace(form.Get("location_text")),
		Description:  strings.TrimSpace(form.Get("description")),
	}

	var err error
	if u.Price, err = formFloat(form, "price"); err != nil {
		return u, err
	}
	ints := []struct {
		field string
		dst   **int64
	}{
		{"construction_area_m2", &u.ConstructionArea},
		{"land_area_m2", &u.LandArea},
		{"bedrooms", &u.Bedrooms},
		{"full_bathrooms", &u.FullBathrooms},
		{"half_bathrooms", &u.HalfBathrooms},
		{"parking_spaces", &u.ParkingSpaces},
		{"levels", &u.Levels},
		{"promoter_id", &u.PromoterID},
	}
	for _, f := range ints {
		if *f.dst, err = formInt(form, f.field); err != nil {
			return u, err
		}
	}
	return u, nil
}

func parsePromoterInput(form url.Values) promoter.Input {
	return promoter.Input{
		Name:    form.Get("name"),
		Company: form.Get("company"),
		Phone:   form.Get("phone"),
		Email:   form.Get("email"),
	}
}

func formFloat(form url.Values, field string) (*float64, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" {
		return nil, nil
	}
	f, err := parseNumber(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return nil, &inputError{field: field, err: err}
	}
	return &f, nil
}

var errNotFinite = errors.New("not a finite number")

// parseNumber parses a decimal number, rejecting NaN and infinities.
func parseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func formInt(form url.Values, field string) (*int64, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, &inputError{field: field, err: err}
	}
	return &i, nil
}

// safeReturn accepts only local dashboard paths as redirect targets.
func safeReturn(v, fallback string) string {
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") && !strings.Contains(v, "\\") {
		return v
	}
	return fallback
}
