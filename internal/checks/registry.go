package checks

import (
	"fmt"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/confdoc"
	"github.com/pfaudit/pfaudit/internal/remote"
)

// CheckFunc evaluates one control against the checker's document and
// optional remote capability.
type CheckFunc func(*Checker) (catalog.Verdict, string)

// Entry binds a control id to its check. Several control ids may share one
// function; each entry still runs independently.
type Entry struct {
	ControlID string
	Run       CheckFunc
}

// Result is one automated verdict with its evidence note.
type Result struct {
	ControlID string
	Status    catalog.Verdict
	Note      string
}

// Registry returns the full check set in its fixed declaration order. The
// order is part of the contract: runs and their persisted output are
// reproducible.
func Registry() []Entry {
	return []Entry{
		{"1.1", (*Checker).checkSSHBanner},
		{"1.3", (*Checker).checkMOTD},
		{"1.4", (*Checker).checkHostname},
		{"1.5", (*Checker).checkDNSServers},
		{"1.6", (*Checker).checkIPv6Disabled},
		{"1.8", (*Checker).checkWebGUIHTTPS},
		{"1.10", (*Checker).checkNTPConfigured},
		{"2.1", (*Checker).checkSessionTimeout},
		{"2.2", (*Checker).checkAuthServers},
		{"3.1", (*Checker).checkSNMPDisabled},
		{"3.2", (*Checker).checkCaptivePortalDisabled},
		{"4.1.1", (*Checker).checkWANAnyDestination},
		{"4.1.2", (*Checker).checkWANAnySource},
		{"4.1.3", (*Checker).checkWANAnyService},
		{"4.1.4", (*Checker).checkWANDisabledRules},
		{"4.1.5", (*Checker).checkWANLogging},
		{"4.1.6", (*Checker).checkWANICMPRules},
		{"5.1.1", (*Checker).checkSNMPTraps},
		{"5.1.2", (*Checker).checkSNMPTraps},
		{"5.1.3", (*Checker).checkNetSNMPPackage},
		{"5.2.1", (*Checker).checkTimezone},
		{"5.3.1", (*Checker).checkDNSSEC},
		{"5.4.1", (*Checker).checkVPNAuth},
		{"5.4.2", (*Checker).checkVPNCertificate},
		{"5.4.3", (*Checker).checkOpenVPNTLS},
		{"5.5.1", (*Checker).checkOpenVPNCipher},
		{"6.1", (*Checker).checkSyslogConfigured},
	}
}

// RunAll executes every registry entry against the shared document and
// optional inspector. A failing check degrades only itself: panics are
// converted to a Not Reviewed result and the remaining checks still run.
func RunAll(entries []Entry, doc *confdoc.Document, insp remote.Inspector) []Result {
	checker := NewChecker(doc, insp)
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		status, note := runOne(checker, e)
		results = append(results, Result{ControlID: e.ControlID, Status: status, Note: note})
	}
	return results
}

func runOne(c *Checker, e Entry) (status catalog.Verdict, note string) {
	defer func() {
		if r := recover(); r != nil {
			status = catalog.NotReviewed
			note = fmt.Sprintf("Auto-check error: panic - %v", r)
		}
	}()
	return e.Run(c)
}
