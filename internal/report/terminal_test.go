package report

import (
	"strings"
	"testing"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/review"
)

func TestSummaryContainsCounts(t *testing.T) {
	dev := &review.Device{Name: "fw01", Hostname: "fw01.corp"}
	s := compliance.Summary{
		Total: 27, Reviewed: 20,
		Compliant: 15, NonCompliant: 4, NonApplicable: 1, NotReviewed: 7,
		CompliancePct:       80.0,
		SectionNonCompliant: map[string]int{"Firewall": 3, "Services": 1},
	}

	out := Summary(dev, s)
	for _, want := range []string{"fw01", "fw01.corp", "80.0%", "27 total", "20 reviewed", "Firewall: 3", "Services: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryOmitsEmptySectionBlock(t *testing.T) {
	dev := &review.Device{Name: "fw01"}
	out := Summary(dev, compliance.Summary{Total: 5, CompliancePct: 100})
	if strings.Contains(out, "Findings by section") {
		t.Errorf("no findings expected:\n%s", out)
	}
}

func TestControlTable(t *testing.T) {
	items := []compliance.EffectiveItem{
		{
			ControlItem: catalog.ControlItem{ControlID: "1.4", Title: "Ensure hostname is set"},
			Status:      catalog.Compliant,
		},
		{
			ControlItem: catalog.ControlItem{ControlID: "3.1", Title: "Ensure SNMP is disabled"},
			Status:      catalog.NonCompliant,
			Comment:     "found rocommunity public",
		},
	}
	out := ControlTable(items)
	for _, want := range []string{"1.4", "Ensure hostname is set", "3.1", "found rocommunity public"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
