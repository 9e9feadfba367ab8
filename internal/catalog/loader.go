package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// cklStatusMap translates DISA CKL status codes into verdicts. Anything not
// listed maps to NotReviewed.
var cklStatusMap = map[string]Verdict{
	"NotAFinding":    Compliant,
	"Open":           NonCompliant,
	"Not_Applicable": NonApplicable,
	"Not_Reviewed":   NotReviewed,
}

// Load reads the control catalog, preferring the CKL checklist export and
// falling back to the legacy flat JSON list. A fallback is logged as a
// warning; only both sources failing is an error.
func Load(logger *log.Logger, cklPath, jsonPath string) (*Catalog, error) {
	if logger == nil {
		logger = log.Default()
	}

	items, cklErr := loadCKL(cklPath)
	if cklErr == nil {
		logger.Printf("loaded %d controls from %s", len(items), cklPath)
		return New(items), nil
	}
	logger.Printf("warning: CKL load failed (%v), falling back to %s", cklErr, jsonPath)

	items, jsonErr := loadJSON(jsonPath)
	if jsonErr != nil {
		return nil, fmt.Errorf("catalog load failed: ckl: %v; json: %w", cklErr, jsonErr)
	}
	logger.Printf("loaded %d controls from %s", len(items), jsonPath)
	return New(items), nil
}

// loadCKL parses a DISA-style CKL file into control items. It fails if the
// file is missing, the iSTIG block is absent, or no VULN entries parse.
func loadCKL(path string) ([]ControlItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ckl: %w", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("invalid XML in CKL file: %w", err)
	}

	istig := doc.FindElement("//STIGS/iSTIG")
	if istig == nil {
		return nil, fmt.Errorf("no iSTIG block found in CKL")
	}

	var items []ControlItem
	for idx, vuln := range istig.FindElements("VULN") {
		attrs := make(map[string]string)
		for _, sd := range vuln.FindElements("STIG_DATA") {
			key := strings.TrimSpace(findText(sd, "VULN_ATTRIBUTE"))
			val := strings.TrimSpace(findText(sd, "ATTRIBUTE_DATA"))
			if key != "" {
				attrs[key] = val
			}
		}

		raw := attrs["Rule_ID"]
		if raw == "" {
			raw = attrs["Vuln_Num"]
		}
		controlID := strings.TrimSpace(stripVendorPrefix(raw))
		if controlID == "" {
			controlID = fmt.Sprintf("item-%d", idx+1)
		}

		groupTitle := strings.TrimSpace(attrs["Group_Title"])
		section := groupTitle
		if i := strings.Index(groupTitle, " - "); i >= 0 {
			section = strings.TrimSpace(groupTitle[:i])
		}
		if section == "" {
			section = "Unknown"
		}

		statusRaw := strings.TrimSpace(findText(vuln, "STATUS"))
		status, ok := cklStatusMap[statusRaw]
		if !ok {
			status = NotReviewed
		}

		items = append(items, ControlItem{
			Section:       section,
			ControlID:     controlID,
			Title:         strings.TrimSpace(attrs["Rule_Title"]),
			Rationale:     strings.TrimSpace(attrs["Vuln_Discuss"]),
			FixText:       strings.TrimSpace(attrs["Fix_Text"]),
			DefaultStatus: status,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no VULN entries parsed from CKL")
	}
	return items, nil
}

// stripVendorPrefix removes a two-letter vendor prefix (e.g. "PF-") from a
// rule identifier.
func stripVendorPrefix(id string) string {
	if len(id) >= 3 && id[2] == '-' && isLetter(id[0]) && isLetter(id[1]) {
		return id[3:]
	}
	return id
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func findText(e *etree.Element, path string) string {
	if child := e.FindElement(path); child != nil {
		return child.Text()
	}
	return ""
}

// legacyItem is one record of the flat legacy JSON catalog. The comment
// field exists in the file but is not carried into the catalog; per-device
// review notes are the only comments surfaced downstream.
type legacyItem struct {
	Section   string `json:"section"`
	ControlID string `json:"control_id"`
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
	FixText   string `json:"fix_text"`
	Status    string `json:"status"`
	Comment   string `json:"comment"`
}

// loadJSON parses the legacy flat catalog format: an ordered JSON list of
// pre-structured records.
func loadJSON(path string) ([]ControlItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var records []legacyItem
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("JSON catalog contains no items")
	}

	items := make([]ControlItem, 0, len(records))
	for _, r := range records {
		items = append(items, ControlItem{
			Section:       r.Section,
			ControlID:     r.ControlID,
			Title:         r.Title,
			Rationale:     r.Rationale,
			FixText:       r.FixText,
			DefaultStatus: ParseVerdict(r.Status),
		})
	}
	return items, nil
}
