package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/review"
)

// WritePDF renders a compliance summary report for one device: header,
// aggregate counts, then the non-compliant and not-reviewed controls with
// their review comments.
func WritePDF(w io.Writer, device *review.Device, items []compliance.EffectiveItem, summary compliance.Summary, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Compliance Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Device Compliance Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Device: %s", device.Name))
	pdf.Ln(6)
	if device.Hostname != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Hostname: %s", device.Hostname))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Overall Compliance: %.1f%%", summary.CompliancePct))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	counts := []struct {
		label string
		n     int
	}{
		{"Total controls", summary.Total},
		{"Reviewed", summary.Reviewed},
		{"Compliant", summary.Compliant},
		{"Non compliant", summary.NonCompliant},
		{"Non applicable", summary.NonApplicable},
		{"Not reviewed", summary.NotReviewed},
	}
	for _, c := range counts {
		pdf.Cell(0, 5, fmt.Sprintf("%s: %d", c.label, c.n))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	if len(summary.SectionNonCompliant) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Findings by Section")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)

		sections := make([]string, 0, len(summary.SectionNonCompliant))
		for s := range summary.SectionNonCompliant {
			sections = append(sections, s)
		}
		sort.Strings(sections)
		for _, s := range sections {
			pdf.Cell(0, 5, fmt.Sprintf("%s: %d non compliant", s, summary.SectionNonCompliant[s]))
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	writeControlList(pdf, "Non Compliant Controls", items, catalog.NonCompliant)
	writeControlList(pdf, "Not Reviewed Controls", items, catalog.NotReviewed)

	return pdf.Output(w)
}

func writeControlList(pdf *gofpdf.Fpdf, heading string, items []compliance.EffectiveItem, want catalog.Verdict) {
	var matched []compliance.EffectiveItem
	for _, item := range items {
		if item.Status == want {
			matched = append(matched, item)
		}
	}
	if len(matched) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, heading)
	pdf.Ln(8)

	for _, item := range matched {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("%s  %s", item.ControlID, item.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		if item.Comment != "" {
			pdf.MultiCell(0, 4.5, "Comment: "+item.Comment, "", "L", false)
		}
		if item.FixText != "" && want == catalog.NonCompliant {
			pdf.MultiCell(0, 4.5, "Fix: "+item.FixText, "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(4)
}
