package checks

import (
	"testing"

	"github.com/pfaudit/pfaudit/internal/catalog"
)

func TestRegistryOrderIsStable(t *testing.T) {
	want := []string{
		"1.1", "1.3", "1.4", "1.5", "1.6", "1.8", "1.10",
		"2.1", "2.2", "3.1", "3.2",
		"4.1.1", "4.1.2", "4.1.3", "4.1.4", "4.1.5", "4.1.6",
		"5.1.1", "5.1.2", "5.1.3", "5.2.1", "5.3.1",
		"5.4.1", "5.4.2", "5.4.3", "5.5.1", "6.1",
	}
	entries := Registry()
	if len(entries) != len(want) {
		t.Fatalf("registry has %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.ControlID != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.ControlID, want[i])
		}
		if e.Run == nil {
			t.Errorf("entry %q has nil check", e.ControlID)
		}
	}
}

func TestRunAllCoversEveryEntry(t *testing.T) {
	doc := docFrom(t, wrap("<system><hostname>fw01</hostname></system>"))
	results := RunAll(Registry(), doc, nil)

	if len(results) != len(Registry()) {
		t.Fatalf("got %d results, want %d", len(results), len(Registry()))
	}
	for _, r := range results {
		if !r.Status.Valid() {
			t.Errorf("%s: invalid status %q", r.ControlID, r.Status)
		}
		if r.Note == "" {
			t.Errorf("%s: empty evidence note", r.ControlID)
		}
	}

	// Order of results matches registry order.
	for i, e := range Registry() {
		if results[i].ControlID != e.ControlID {
			t.Errorf("result %d = %q, want %q", i, results[i].ControlID, e.ControlID)
		}
	}
}

func TestRunAllSharedCheckRunsPerEntry(t *testing.T) {
	// 5.1.1 and 5.1.2 share one function; both entries must produce a result.
	doc := docFrom(t, wrap("<snmpd><rocommunity>public</rocommunity><trapserver>10.0.0.5</trapserver></snmpd>"))
	results := RunAll(Registry(), doc, nil)

	byID := make(map[string]Result)
	for _, r := range results {
		byID[r.ControlID] = r
	}
	for _, id := range []string{"5.1.1", "5.1.2"} {
		r, ok := byID[id]
		if !ok {
			t.Fatalf("no result for %s", id)
		}
		if r.Status != catalog.Compliant {
			t.Errorf("%s = %q, want Compliant", id, r.Status)
		}
	}
}

func TestRunAllRecoversPanickingCheck(t *testing.T) {
	entries := []Entry{
		{"x.1", func(c *Checker) (catalog.Verdict, string) { panic("boom") }},
		{"x.2", func(c *Checker) (catalog.Verdict, string) { return catalog.Compliant, "fine" }},
	}
	doc := docFrom(t, wrap(""))
	results := RunAll(entries, doc, nil)

	if results[0].Status != catalog.NotReviewed {
		t.Errorf("panicking check status = %q, want Not Reviewed", results[0].Status)
	}
	if results[0].Note != "Auto-check error: panic - boom" {
		t.Errorf("note = %q", results[0].Note)
	}
	if results[1].Status != catalog.Compliant {
		t.Errorf("later check must still run, got %q", results[1].Status)
	}
}
