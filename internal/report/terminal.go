// Package report renders a device's compliance state for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/review"
)

var (
	colorSuccess = lipgloss.Color("#22C55E")
	colorDanger  = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#EAB308")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWhite   = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	pctStyle = lipgloss.NewStyle().
			Bold(true)
)

// verdictStyle picks the display style for one compliance verdict.
func verdictStyle(v catalog.Verdict) lipgloss.Style {
	switch v {
	case catalog.Compliant:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case catalog.NonCompliant:
		return lipgloss.NewStyle().Foreground(colorDanger)
	case catalog.NonApplicable:
		return lipgloss.NewStyle().Foreground(colorMuted)
	default:
		return lipgloss.NewStyle().Foreground(colorWarning)
	}
}

// Summary renders the aggregate compliance block for one device.
func Summary(device *review.Device, s compliance.Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(device.Name))
	if device.Hostname != "" {
		b.WriteString(labelStyle.Render("  (" + device.Hostname + ")"))
	}
	b.WriteByte('\n')

	pct := fmt.Sprintf("%.1f%%", s.CompliancePct)
	switch {
	case s.CompliancePct >= 90:
		pct = pctStyle.Foreground(colorSuccess).Render(pct)
	case s.CompliancePct >= 70:
		pct = pctStyle.Foreground(colorWarning).Render(pct)
	default:
		pct = pctStyle.Foreground(colorDanger).Render(pct)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Compliance:"), pct)

	fmt.Fprintf(&b, "%s %d total, %d reviewed\n",
		labelStyle.Render("Controls:"), s.Total, s.Reviewed)
	fmt.Fprintf(&b, "  %s %d   %s %d   %s %d   %s %d\n",
		verdictStyle(catalog.Compliant).Render("compliant"), s.Compliant,
		verdictStyle(catalog.NonCompliant).Render("non compliant"), s.NonCompliant,
		verdictStyle(catalog.NonApplicable).Render("non applicable"), s.NonApplicable,
		verdictStyle(catalog.NotReviewed).Render("not reviewed"), s.NotReviewed)

	if len(s.SectionNonCompliant) > 0 {
		b.WriteString(labelStyle.Render("Findings by section:"))
		b.WriteByte('\n')
		sections := make([]string, 0, len(s.SectionNonCompliant))
		for name := range s.SectionNonCompliant {
			sections = append(sections, name)
		}
		sort.Strings(sections)
		for _, name := range sections {
			fmt.Fprintf(&b, "  %s: %d\n", name, s.SectionNonCompliant[name])
		}
	}
	return b.String()
}

// ControlTable renders the full merged control list, one control per line.
func ControlTable(items []compliance.EffectiveItem) string {
	var b strings.Builder
	for _, item := range items {
		status := verdictStyle(item.Status).Render(fmt.Sprintf("%-14s", string(item.Status)))
		fmt.Fprintf(&b, "%-8s %s %s\n", item.ControlID, status, item.Title)
		if item.Comment != "" {
			fmt.Fprintf(&b, "         %s\n", labelStyle.Render(item.Comment))
		}
	}
	return b.String()
}
