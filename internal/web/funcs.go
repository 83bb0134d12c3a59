package web

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hoomlabs/hoom/internal/listing"
)

const notAvailable = "N/A"

// Printers and casers keep state, so each call gets its own.
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatPrice":  tmplFormatPrice,
		"formatMetric": tmplFormatMetric,
		"typeLabel":    tmplTypeLabel,
		"orDefault":    tmplOrDefault,
		"mapURL":       tmplMapURL,
		"inputFloat":   tmplInputFloat,
		"inputInt":     tmplInputInt,
		"selected":     tmplSelected,
		"isPromoter":   tmplIsPromoter,
		"filterQuery":  tmplFilterQuery,
	}
}

// tmplFormatPrice renders a price with thousands separators.
func tmplFormatPrice(p *float64) string {
	if p == nil {
		return notAvailable
	}
	return printer().Sprintf("$%.0f", *p)
}

// tmplFormatMetric renders a count or area; zero means not applicable.
func tmplFormatMetric(v *int64, unit string) string {
	if v == nil || *v == 0 {
		return notAvailable
	}
	return printer().Sprintf("%d %s", *v, unit)
}

func tmplTypeLabel(t string) string {
	if t == "" || t == listing.AllTypes {
		return t
	}
	return cases.Title(language.Spanish).String(strings.ReplaceAll(t, "_", " "))
}

func tmplOrDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// tmplMapURL links the listing's point through its geohash.
func tmplMapURL(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return "https://geohash.org/" + geohash.Encode(*lat, *lng)
}

func tmplInputFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}

func tmplInputInt(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func tmplSelected(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func tmplIsPromoter(current *int64, id int64) bool {
	return current != nil && *current == id
}

// tmplFilterQuery rebuilds the query string of the filter form so that
// actions can send the user back to the same view.
func tmplFilterQuery(c listing.Criteria) string {
	q := url.Values{"f": {"1"}}
	for _, p := range c.Portals {
		q.Add("portal", p)
	}
	for _, p := range c.Promoters {
		q.Add("promoter", p)
	}
	q.Set("min", fmt.Sprintf("%.0f", c.MinPrice))
	q.Set("max", fmt.Sprintf("%.0f", c.MaxPrice))
	q.Set("type", c.PropertyType)
	if c.Exclude {
		q.Set("exclude", "on")
	}
	return "/?" + q.Encode()
}
