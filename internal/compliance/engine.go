// Package compliance merges the control catalog with per-device review
// overrides and computes aggregate compliance state.
package compliance

import (
	"math"

	"github.com/pfaudit/pfaudit/internal/catalog"
)

// Override is a device-specific review of one control, keyed by the
// control's catalog ordinal in the review store.
type Override struct {
	Status catalog.Verdict
	Note   string
}

// EffectiveItem is the device-specific view of one control after applying
// its override. The catalog's own default comment is never surfaced; the
// comment is the per-device review note or empty.
type EffectiveItem struct {
	catalog.ControlItem
	Status  catalog.Verdict
	Comment string
}

// Summary holds aggregate compliance counts for one device.
type Summary struct {
	Total         int
	Reviewed      int
	NotReviewed   int
	Compliant     int
	NonCompliant  int
	NonApplicable int
	// CompliancePct is (compliant + non-applicable) over the reviewed count
	// (or the total when nothing has been reviewed yet), as a percentage
	// rounded to one decimal.
	CompliancePct float64
	// SectionNonCompliant maps section name to its non-compliant item count.
	// Sections with no non-compliant items are absent.
	SectionNonCompliant map[string]int
}

// BuildView merges the catalog with a device's overrides in catalog order.
// Pure; no I/O.
func BuildView(cat *catalog.Catalog, overrides map[int]Override) []EffectiveItem {
	items := make([]EffectiveItem, 0, cat.Len())
	for _, base := range cat.Items() {
		status := base.DefaultStatus
		comment := ""
		if ov, ok := overrides[base.Ordinal]; ok {
			status = ov.Status
			if ov.Note != "" {
				comment = ov.Note
			}
		}
		items = append(items, EffectiveItem{
			ControlItem: base,
			Status:      catalog.ParseVerdict(string(status)),
			Comment:     comment,
		})
	}
	return items
}

// Summarize computes the compliance summary for a device in a single pass
// over the merged item sequence.
func Summarize(cat *catalog.Catalog, overrides map[int]Override) Summary {
	s := Summary{
		Total:               cat.Len(),
		SectionNonCompliant: make(map[string]int),
	}

	for _, item := range BuildView(cat, overrides) {
		switch item.Status {
		case catalog.Compliant:
			s.Compliant++
		case catalog.NonCompliant:
			s.NonCompliant++
			s.SectionNonCompliant[item.Section]++
		case catalog.NonApplicable:
			s.NonApplicable++
		default:
			s.NotReviewed++
		}
	}

	s.Reviewed = s.Total - s.NotReviewed

	// An unreviewed catalog should not read as 0% compliant, so the
	// percentage base is the reviewed count once anything has been reviewed
	// and the total before that. Non-applicable counts as compliant.
	if s.Total > 0 {
		denom := s.Reviewed
		if denom == 0 {
			denom = s.Total
		}
		pct := float64(s.Compliant+s.NonApplicable) / float64(denom) * 100.0
		s.CompliancePct = math.Round(pct*10) / 10
	}
	return s
}
