package listing

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hoomlabs/hoom/internal/promoter"
)

// DefaultExcludeTitle is the title text hidden by default.
const DefaultExcludeTitle = "fraccionamiento"

// Criteria is the set of predicates the dashboard filters by. Every
// predicate must hold for a listing to be shown.
type Criteria struct {
	Portals      []string `json:"portals"`
	Promoters    []string `json:"promoters"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	PropertyType string   `json:"property_type"`
	ExcludeTitle string   `json:"exclude_title"`
	Exclude      bool     `json:"exclude"`
}

// Apply returns the listings matching c, in their original order.
// Listings without a price never match a price range.
func Apply(views []View, c Criteria) []View {
	portals := toSet(c.Portals)
	promoters := toSet(c.Promoters)
	fold := cases.Fold()
	needle := fold.String(c.ExcludeTitle)

	out := make([]View, 0, len(views))
	for _, v := range views {
		if !portals[v.SourcePortal] || !promoters[v.PromoterName] {
			continue
		}
		if v.Price == nil || !(*v.Price >= c.MinPrice && *v.Price <= c.MaxPrice) {
			continue
		}
		if c.PropertyType != AllTypes && v.PropertyType != c.PropertyType {
			continue
		}
		if c.Exclude && needle != "" && strings.Contains(fold.String(v.Title), needle) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Options are the choices the filter controls offer for a snapshot.
type Options struct {
	Portals   []string `json:"portals"`
	Promoters []string `json:"promoters"`
	Types     []string `json:"types"`
	MaxPrice  float64  `json:"max_price"`
}

// OptionsFor derives the filter choices: portals in load order, NoPromoter
// followed by every known promoter name, AllTypes followed by the sorted
// property types, and the ceiling of the highest price.
func OptionsFor(views []View, promoters []promoter.Promoter) Options {
	opts := Options{
		Portals:   []string{},
		Promoters: []string{NoPromoter},
		Types:     []string{AllTypes},
	}

	seenPortal := map[string]bool{}
	seenType := map[string]bool{}
	var types []string
	for _, v := range views {
		if !seenPortal[v.SourcePortal] {
			seenPortal[v.SourcePortal] = true
			opts.Portals = append(opts.Portals, v.SourcePortal)
		}
		if v.PropertyType != "" && !seenType[v.PropertyType] {
			seenType[v.PropertyType] = true
			types = append(types, v.PropertyType)
		}
		if v.Price != nil && *v.Price > opts.MaxPrice {
			opts.MaxPrice = *v.Price
		}
	}
	sort.Strings(types)
	opts.Types = append(opts.Types, types...)
	opts.MaxPrice = math.Ceil(opts.MaxPrice)

	seenName := map[string]bool{NoPromoter: true}
	for _, p := range promoters {
		if !seenName[p.Name] {
			seenName[p.Name] = true
			opts.Promoters = append(opts.Promoters, p.Name)
		}
	}

	return opts
}

// Defaults selects everything: every portal and promoter, every type, the
// whole price range, with title exclusion on.
func (o Options) Defaults(excludeTitle string) Criteria {
	if excludeTitle == "" {
		excludeTitle = DefaultExcludeTitle
	}
	return Criteria{
		Portals:      append([]string(nil), o.Portals...),
		Promoters:    append([]string(nil), o.Promoters...),
		MinPrice:     0,
		MaxPrice:     o.MaxPrice,
		PropertyType: AllTypes,
		ExcludeTitle: excludeTitle,
		Exclude:      true,
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
