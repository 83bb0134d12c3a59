package listing

import "sort"

// Summary holds the dashboard metric cards.
type Summary struct {
	Total           int         `json:"total"`
	Shown           int         `json:"shown"`
	Promoters       int         `json:"promoters"`
	WithoutPromoter int         `json:"without_promoter"`
	Priced          int         `json:"priced"`
	AveragePrice    *float64    `json:"average_price,omitempty"`
	ByType          []TypeCount `json:"by_type"`
}

// TypeCount is the number of shown listings of one property type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Summarize computes the metric cards for the shown subset of snap.
func Summarize(snap *Snapshot, shown []View) Summary {
	s := Summary{
		Total:     len(snap.Listings),
		Shown:     len(shown),
		Promoters: len(snap.Promoters),
		ByType:    []TypeCount{},
	}

	var sum float64
	counts := map[string]int{}
	for _, v := range shown {
		if v.PromoterID == nil {
			s.WithoutPromoter++
		}
		if v.Price != nil {
			s.Priced++
			sum += *v.Price
		}
		if v.PropertyType != "" {
			counts[v.PropertyType]++
		}
	}

	if s.Priced > 0 {
		avg := sum / float64(s.Priced)
		s.AveragePrice = &avg
	}

	for t, n := range counts {
		s.ByType = append(s.ByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Count != s.ByType[j].Count {
			return s.ByType[i].Count > s.ByType[j].Count
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})

	return s
}
