package listing

import (
	"testing"

	"github.com/hoomlabs/hoom/internal/promoter"
)

func TestSummarize(t *testing.T) {
	one := int64(1)
	withPromoter := testView(1, "Casa", 100, "casa", "a", "Acme")
	withPromoter.PromoterID = &one

	snap := &Snapshot{
		Listings: []View{
			withPromoter,
			testView(2, "Casa 2", 300, "casa", "a", NoPromoter),
			testView(3, "Depto", 999, "departamento", "b", NoPromoter),
			{Listing: Listing{ID: 4, PropertyType: "terreno"}, PromoterName: NoPromoter},
		},
		Promoters: []promoter.Promoter{{ID: 1, Name: "Acme"}},
	}

	s := Summarize(snap, snap.Listings[:2])

	if s.Total != 4 || s.Shown != 2 || s.Promoters != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.WithoutPromoter != 1 {
		t.Errorf("without promoter = %d, want 1", s.WithoutPromoter)
	}
	if s.AveragePrice == nil || *s.AveragePrice != 200 {
		t.Errorf("average = %v, want 200", s.AveragePrice)
	}
	if len(s.ByType) != 1 || s.ByType[0].Type != "casa" || s.ByType[0].Count != 2 {
		t.Errorf("by type = %+v", s.ByType)
	}

	all := Summarize(snap, snap.Listings)
	if all.Priced != 3 {
		t.Errorf("priced = %d, want 3", all.Priced)
	}
	if all.ByType[0].Type != "casa" || all.ByType[1].Type != "departamento" || all.ByType[2].Type != "terreno" {
		t.Errorf("by type order = %+v", all.ByType)
	}
}

func TestSummarizeNoPrices(t *testing.T) {
	snap := &Snapshot{Listings: []View{{Listing: Listing{ID: 1}}}}
	s := Summarize(snap, snap.Listings)
	if s.AveragePrice != nil {
		t.Errorf("average = %v, want nil", *s.AveragePrice)
	}
	if s.ByType == nil {
		t.Error("expected non-nil by type")
	}
}
