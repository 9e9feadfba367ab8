package compliance

import (
	"testing"

	"github.com/pfaudit/pfaudit/internal/catalog"
)

// fourItemCatalog mirrors the canonical fixture: one item per verdict.
func fourItemCatalog() *catalog.Catalog {
	return catalog.New([]catalog.ControlItem{
		{ControlID: "1.1", Section: "1 Access Control", DefaultStatus: catalog.NotReviewed},
		{ControlID: "1.2", Section: "1 Access Control", DefaultStatus: catalog.Compliant},
		{ControlID: "4.1", Section: "4 Firewall", DefaultStatus: catalog.NonCompliant},
		{ControlID: "5.1", Section: "5 Services", DefaultStatus: catalog.NonApplicable},
	})
}

func checkPartition(t *testing.T, s Summary) {
	t.Helper()
	if s.Reviewed+s.NotReviewed != s.Total {
		t.Errorf("reviewed(%d) + notReviewed(%d) != total(%d)", s.Reviewed, s.NotReviewed, s.Total)
	}
	if s.Compliant+s.NonCompliant+s.NonApplicable+s.NotReviewed != s.Total {
		t.Errorf("verdict counts do not partition total: %+v", s)
	}
}

func TestSummarizeNoOverrides(t *testing.T) {
	s := Summarize(fourItemCatalog(), nil)
	checkPartition(t, s)

	if s.Total != 4 || s.Reviewed != 3 || s.NotReviewed != 1 {
		t.Fatalf("counts = %+v", s)
	}
	// (compliant + nonApplicable) / reviewed = (1+1)/3 = 66.7
	if s.CompliancePct != 66.7 {
		t.Errorf("CompliancePct = %v, want 66.7", s.CompliancePct)
	}
}

func TestSummarizeWithOverrides(t *testing.T) {
	ov := map[int]Override{
		0: {Status: catalog.Compliant, Note: "verified by hand"},
		2: {Status: catalog.Compliant},
	}
	s := Summarize(fourItemCatalog(), ov)
	checkPartition(t, s)

	if s.Reviewed != 4 || s.NotReviewed != 0 || s.Compliant != 3 {
		t.Fatalf("counts = %+v", s)
	}
	if s.CompliancePct != 100.0 {
		t.Errorf("CompliancePct = %v, want 100.0", s.CompliancePct)
	}
}

func TestSummarizeNothingReviewedUsesTotalDenominator(t *testing.T) {
	cat := catalog.New([]catalog.ControlItem{
		{ControlID: "a", DefaultStatus: catalog.NotReviewed},
		{ControlID: "b", DefaultStatus: catalog.NotReviewed},
	})
	s := Summarize(cat, nil)
	checkPartition(t, s)
	if s.CompliancePct != 0.0 {
		t.Errorf("CompliancePct = %v, want 0.0", s.CompliancePct)
	}
}

func TestSummarizeEmptyCatalog(t *testing.T) {
	s := Summarize(catalog.New(nil), nil)
	if s.Total != 0 || s.CompliancePct != 0.0 {
		t.Errorf("empty catalog summary = %+v", s)
	}
}

func TestSummarizeSectionMap(t *testing.T) {
	s := Summarize(fourItemCatalog(), map[int]Override{
		1: {Status: catalog.NonCompliant},
	})

	if got := s.SectionNonCompliant["1 Access Control"]; got != 1 {
		t.Errorf("section count = %d, want 1", got)
	}
	if got := s.SectionNonCompliant["4 Firewall"]; got != 1 {
		t.Errorf("section count = %d, want 1", got)
	}
	// Sections with zero non-compliant items must be absent, not zero.
	if _, ok := s.SectionNonCompliant["5 Services"]; ok {
		t.Error("clean section should be absent from the map")
	}
}

func TestSummarizeRoundsToOneDecimal(t *testing.T) {
	// 1 compliant of 3 reviewed = 33.333... -> 33.3
	cat := catalog.New([]catalog.ControlItem{
		{ControlID: "a", DefaultStatus: catalog.Compliant},
		{ControlID: "b", DefaultStatus: catalog.NonCompliant},
		{ControlID: "c", DefaultStatus: catalog.NonCompliant},
	})
	s := Summarize(cat, nil)
	if s.CompliancePct != 33.3 {
		t.Errorf("CompliancePct = %v, want 33.3", s.CompliancePct)
	}
}

func TestBuildViewCommentMerge(t *testing.T) {
	cat := fourItemCatalog()

	// No override: catalog default comments are never surfaced.
	items := BuildView(cat, nil)
	if len(items) != 4 {
		t.Fatalf("len = %d, want 4", len(items))
	}
	for _, it := range items {
		if it.Comment != "" {
			t.Errorf("item %s comment = %q, want empty", it.ControlID, it.Comment)
		}
	}

	// Override with note: note verbatim. Override with empty note: empty.
	items = BuildView(cat, map[int]Override{
		0: {Status: catalog.Compliant, Note: "checked on console"},
		1: {Status: catalog.NonCompliant},
	})
	if items[0].Comment != "checked on console" {
		t.Errorf("Comment = %q, want override note verbatim", items[0].Comment)
	}
	if items[0].Status != catalog.Compliant {
		t.Errorf("Status = %q, want Compliant", items[0].Status)
	}
	if items[1].Comment != "" {
		t.Errorf("Comment = %q, want empty", items[1].Comment)
	}
}

func TestBuildViewCollapsesCorruptedStatus(t *testing.T) {
	items := BuildView(fourItemCatalog(), map[int]Override{
		0: {Status: catalog.Verdict("TOTALLY BROKEN")},
	})
	if items[0].Status != catalog.NotReviewed {
		t.Errorf("corrupted status should collapse to Not Reviewed, got %q", items[0].Status)
	}
	for _, it := range items {
		if !it.Status.Valid() {
			t.Errorf("item %s has invalid status %q", it.ControlID, it.Status)
		}
	}
}
