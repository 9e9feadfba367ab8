package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/review"
)

func TestWritePDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	dev := &review.Device{Name: "Edge FW #1", Hostname: "edge-fw-01"}
	items := sampleItems()
	summary := compliance.Summary{
		Total: 2, Reviewed: 2, Compliant: 1, NonCompliant: 1,
		CompliancePct:       50.0,
		SectionNonCompliant: map[string]int{"Services": 1},
	}

	ts := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := WritePDF(&buf, dev, items, summary, ts); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
	if buf.Len() < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestWritePDFEmptyView(t *testing.T) {
	var buf bytes.Buffer
	dev := &review.Device{Name: "fw"}
	if err := WritePDF(&buf, dev, nil, compliance.Summary{}, time.Now()); err != nil {
		t.Fatalf("WritePDF on empty view: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}
