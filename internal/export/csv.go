// Package export renders a device's merged compliance view into portable
// report formats (CSV and PDF).
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/review"
)

// csvHeader is the fixed column set of a compliance export.
var csvHeader = []string{
	"Device Name", "Hostname", "Control ID", "Section",
	"Title", "Status", "Comment", "Rationale", "Fix Text",
}

// WriteCSV writes the device's merged compliance view as CSV. Every field is
// quoted, including empty ones, so downstream spreadsheet imports never
// misparse free-text rationale or fix-text columns.
func WriteCSV(w io.Writer, device *review.Device, items []compliance.EffectiveItem) error {
	if err := writeRecord(w, csvHeader); err != nil {
		return err
	}
	for _, item := range items {
		record := []string{
			device.Name,
			device.Hostname,
			item.ControlID,
			item.Section,
			item.Title,
			string(item.Status),
			item.Comment,
			item.Rationale,
			item.FixText,
		}
		if err := writeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}

// writeRecord emits one CSV record with unconditional quoting. Interior
// quotes are doubled per RFC 4180.
func writeRecord(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)
	underscoreRuns      = regexp.MustCompile(`_+`)
)

// SanitizeFilename reduces a device name to a filesystem-safe token:
// punctuation is stripped, whitespace becomes underscores, and runs of
// underscores collapse.
func SanitizeFilename(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "")
	s = strings.Join(strings.Fields(s), "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "device"
	}
	return s
}

// Filename builds the timestamped export filename for a device.
func Filename(deviceName, ext string, now time.Time) string {
	return fmt.Sprintf("%s_compliance_%s.%s",
		SanitizeFilename(deviceName), now.Format("20060102_150405"), ext)
}
