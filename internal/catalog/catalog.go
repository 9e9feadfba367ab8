// Package catalog holds the benchmark control catalog: the ordered list of
// security controls a device is reviewed against, loaded once at startup and
// read-only for the life of the process.
package catalog

import "fmt"

// Verdict classifies the compliance state of a single control.
type Verdict string

const (
	Compliant     Verdict = "Compliant"
	NonCompliant  Verdict = "Non Compliant"
	NonApplicable Verdict = "Non Applicable"
	NotReviewed   Verdict = "Not Reviewed"
)

// ParseVerdict maps a stored string to a Verdict. Anything outside the four
// known values collapses to NotReviewed so corrupted review rows can never
// surface an arbitrary status.
func ParseVerdict(s string) Verdict {
	switch Verdict(s) {
	case Compliant, NonCompliant, NonApplicable, NotReviewed:
		return Verdict(s)
	}
	return NotReviewed
}

// Valid reports whether v is one of the four defined verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case Compliant, NonCompliant, NonApplicable, NotReviewed:
		return true
	}
	return false
}

// ControlItem is one benchmark entry. Immutable once loaded.
type ControlItem struct {
	Section       string
	ControlID     string
	Title         string
	Rationale     string
	FixText       string
	DefaultStatus Verdict
	// Ordinal is the zero-based position in the loaded catalog. It defines
	// iteration order and is the key the review store uses for per-device
	// overrides.
	Ordinal int
}

// Catalog is the ordered control list plus a control-id lookup index.
type Catalog struct {
	items []ControlItem
	index map[string]int
}

// New builds a Catalog from items, assigning ordinals by position. Duplicate
// control ids are not rejected; the index keeps the last occurrence.
func New(items []ControlItem) *Catalog {
	c := &Catalog{
		items: make([]ControlItem, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i := range c.items {
		c.items[i].Ordinal = i
		c.index[c.items[i].ControlID] = i
	}
	return c
}

// Len returns the number of controls.
func (c *Catalog) Len() int { return len(c.items) }

// Items returns the controls in catalog order. Callers must not modify the
// returned slice.
func (c *Catalog) Items() []ControlItem { return c.items }

// At returns the control at the given ordinal.
func (c *Catalog) At(ordinal int) (ControlItem, error) {
	if ordinal < 0 || ordinal >= len(c.items) {
		return ControlItem{}, fmt.Errorf("ordinal %d out of range (catalog has %d items)", ordinal, len(c.items))
	}
	return c.items[ordinal], nil
}

// Lookup returns the control with the given id.
func (c *Catalog) Lookup(controlID string) (ControlItem, bool) {
	i, ok := c.index[controlID]
	if !ok {
		return ControlItem{}, false
	}
	return c.items[i], true
}

// OrdinalOf returns the catalog position of the given control id.
func (c *Catalog) OrdinalOf(controlID string) (int, bool) {
	i, ok := c.index[controlID]
	return i, ok
}
