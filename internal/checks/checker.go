// Package checks implements the automated control checks that inspect a
// device's config.xml export and, where a check needs it, the device's live
// filesystem through the remote inspector capability.
package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/confdoc"
	"github.com/pfaudit/pfaudit/internal/remote"
)

const noSSHNote = "SSH connection required for this check."

var (
	bannerDirectiveRe = regexp.MustCompile(`(?m)^Banner\s+`)
	trapSinkRe        = regexp.MustCompile(`(?i)trap[s2]?sink\s+\S+`)
	trapSessRe        = regexp.MustCompile(`(?i)trapsess\s+.*\s+\S+`)
)

// Checker evaluates one device's configuration. The document is required;
// the inspector is optional and only ever read from.
type Checker struct {
	doc    *confdoc.Document
	remote remote.Inspector
}

// NewChecker creates a checker over a parsed config document and an optional
// remote inspector.
func NewChecker(doc *confdoc.Document, insp remote.Inspector) *Checker {
	return &Checker{doc: doc, remote: insp}
}

func errNote(err error) string {
	return fmt.Sprintf("Auto-check error: %T - %v", err, err)
}

// --- Remote-file checks ---

// checkSSHBanner verifies sshd presents a warning banner with content.
func (c *Checker) checkSSHBanner() (catalog.Verdict, string) {
	if c.remote == nil {
		return catalog.NotReviewed, noSSHNote
	}

	sshdConfig, err := c.remote.ReadFile("/etc/ssh/sshd_config")
	if err != nil {
		return catalog.NotReviewed, errNote(err)
	}
	if sshdConfig == "" {
		return catalog.NonCompliant, "Cannot read /etc/ssh/sshd_config."
	}
	if !bannerDirectiveRe.MatchString(sshdConfig) {
		return catalog.NonCompliant, "No Banner directive found in /etc/ssh/sshd_config."
	}

	exists, err := c.remote.FileExists("/etc/issue.net")
	if err != nil {
		return catalog.NotReviewed, errNote(err)
	}
	if !exists {
		return catalog.NonCompliant, "Banner directive present but /etc/issue.net is missing."
	}
	content, err := c.remote.ReadFile("/etc/issue.net")
	if err != nil {
		return catalog.NotReviewed, errNote(err)
	}
	if strings.TrimSpace(content) == "" {
		return catalog.NonCompliant, "Banner directive present but /etc/issue.net is empty."
	}
	return catalog.Compliant, "Banner directive present and /etc/issue.net has content."
}

// checkMOTD verifies /etc/motd exists and has content.
func (c *Checker) checkMOTD() (catalog.Verdict, string) {
	if c.remote == nil {
		return catalog.NotReviewed, noSSHNote
	}

	exists, err := c.remote.FileExists("/etc/motd")
	if err != nil {
		return catalog.NotReviewed, errNote(err)
	}
	if !exists {
		return catalog.NonCompliant, "/etc/motd is missing."
	}
	content, err := c.remote.ReadFile("/etc/motd")
	if err != nil {
		return catalog.NotReviewed, errNote(err)
	}
	if strings.TrimSpace(content) == "" {
		return catalog.NonCompliant, "/etc/motd is empty."
	}
	return catalog.Compliant, "/etc/motd exists and has content."
}

// --- Presence/value checks against config.xml ---

func (c *Checker) checkHostname() (catalog.Verdict, string) {
	hostname, _ := c.doc.FindText("system/hostname")
	if hostname != "" {
		return catalog.Compliant, fmt.Sprintf("Hostname set to '%s'.", hostname)
	}
	return catalog.NonCompliant, "Hostname is not set in config.xml."
}

func (c *Checker) checkDNSServers() (catalog.Verdict, string) {
	servers := c.doc.FindAll("system/dnsserver")
	if len(servers) == 0 {
		return catalog.NonCompliant, "No DNS servers defined in system/dnsserver."
	}
	var addrs []string
	for _, s := range servers {
		if text := s.Text(); text != "" {
			addrs = append(addrs, text)
		}
	}
	if len(addrs) == 0 {
		return catalog.NonCompliant, "system/dnsserver entries present but empty."
	}
	return catalog.Compliant, "DNS servers configured: " + strings.Join(addrs, ", ")
}

// checkIPv6Disabled inspects the WAN ipprotocol. A missing value is
// genuinely ambiguous, so it stays Not Reviewed rather than failing.
func (c *Checker) checkIPv6Disabled() (catalog.Verdict, string) {
	ipproto, _ := c.doc.FindText("interfaces/wan/ipprotocol")
	if ipproto == "" {
		return catalog.NotReviewed, "No ipprotocol value found for WAN in config.xml."
	}
	switch strings.ToLower(ipproto) {
	case "inet", "ipv4":
		return catalog.Compliant, fmt.Sprintf("WAN ipprotocol is '%s', IPv4-only.", ipproto)
	}
	return catalog.NonCompliant, fmt.Sprintf(
		"WAN ipprotocol is '%s' (IPv6 or dual-stack enabled). Verify IPv6 usage vs benchmark requirements.", ipproto)
}

func (c *Checker) checkWebGUIHTTPS() (catalog.Verdict, string) {
	protocol, _ := c.doc.FindText("system/webgui/protocol")
	if strings.EqualFold(protocol, "https") {
		return catalog.Compliant, "WebGUI protocol is HTTPS."
	}
	display := protocol
	if display == "" {
		display = "not set"
	}
	return catalog.NonCompliant, fmt.Sprintf("WebGUI protocol is '%s' (expected HTTPS).", display)
}

func (c *Checker) checkNTPConfigured() (catalog.Verdict, string) {
	timeservers, _ := c.doc.FindText("system/timeservers")
	ntpdEnable, _ := c.doc.FindText("ntpd/enable")

	if timeservers == "" {
		return catalog.NonCompliant, "No NTP time servers defined under system/timeservers."
	}
	if strings.ToLower(ntpdEnable) == "enabled" {
		return catalog.Compliant, "NTP enabled with time servers: " + timeservers
	}
	return catalog.NonCompliant, fmt.Sprintf(
		"NTP time servers configured (%s) but ntpd is not enabled.", timeservers)
}

func (c *Checker) checkSessionTimeout() (catalog.Verdict, string) {
	raw, ok := c.doc.FindText("system/webgui/session_timeout")
	if !ok {
		return catalog.NonCompliant, "No webgui/session_timeout value set in config.xml."
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return catalog.NonCompliant, fmt.Sprintf(
			"session_timeout value '%s' is not a valid integer.", raw)
	}
	if val <= 10 {
		return catalog.Compliant, fmt.Sprintf("Session timeout set to %d minutes.", val)
	}
	return catalog.NonCompliant, fmt.Sprintf("Session timeout set to %d minutes (> 10).", val)
}

func (c *Checker) checkAuthServers() (catalog.Verdict, string) {
	servers := c.doc.FindAll("authserver")
	if len(servers) == 0 {
		return catalog.NonCompliant, "No LDAP/RADIUS auth servers (<authserver> blocks) found."
	}
	var names []string
	for _, s := range servers {
		name, _ := s.ChildText("name")
		if name == "" {
			name, _ = s.ChildText("description")
		}
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return catalog.Compliant, "Authentication servers configured (names not found in XML)."
	}
	return catalog.Compliant, "Authentication servers configured: " + strings.Join(names, ", ")
}

func (c *Checker) checkSNMPDisabled() (catalog.Verdict, string) {
	rocommunity, _ := c.doc.FindText("snmpd/rocommunity")
	if rocommunity == "" {
		return catalog.Compliant, "SNMP read-only community is empty; SNMP appears to be disabled."
	}
	pollport, _ := c.doc.FindText("snmpd/pollport")
	return catalog.NonCompliant, fmt.Sprintf(
		"SNMP rocommunity is configured (pollport %s). Verify this meets benchmark hardening requirements.", pollport)
}

func (c *Checker) checkCaptivePortalDisabled() (catalog.Verdict, string) {
	if cp, ok := c.doc.Find("captiveportal"); ok && cp.HasChildren() {
		return catalog.NonCompliant,
			"Captive portal appears to have configuration present. Verify if this is required and hardened."
	}
	return catalog.Compliant, "No captive portal configuration detected."
}

func (c *Checker) checkSyslogConfigured() (catalog.Verdict, string) {
	remoteserver, _ := c.doc.FindText("syslog/remoteserver")
	if remoteserver != "" {
		return catalog.Compliant, "Remote syslog server configured: " + remoteserver
	}
	return catalog.NonCompliant, "No remote syslog server configured under <syslog><remoteserver>."
}

func (c *Checker) checkTimezone() (catalog.Verdict, string) {
	timezone, _ := c.doc.FindText("system/timezone")
	if timezone != "" {
		return catalog.Compliant, fmt.Sprintf("System time zone set to '%s'.", timezone)
	}
	return catalog.NonCompliant, "System time zone is not set under <system><timezone>."
}

func (c *Checker) checkDNSSEC() (catalog.Verdict, string) {
	unbound, ok := c.doc.Find("unbound")
	if !ok {
		return catalog.NotReviewed, "No <unbound> DNS resolver block found."
	}
	if _, ok := unbound.Child("dnssec"); ok {
		return catalog.Compliant, "Unbound DNS resolver has DNSSEC enabled."
	}
	return catalog.NonCompliant, "Unbound DNS resolver does not have <dnssec /> configured."
}

// --- SNMP trap / package checks ---

// checkSNMPTraps backs both trap controls (receiver configured, receiver
// exists); the registry runs it once per control id.
func (c *Checker) checkSNMPTraps() (catalog.Verdict, string) {
	rocommunity, _ := c.doc.FindText("snmpd/rocommunity")
	trapserver, _ := c.doc.FindText("snmpd/trapserver")
	trapstring, _ := c.doc.FindText("snmpd/trapstring")

	var snmpdConf string
	if c.remote != nil {
		// Best-effort reads; a transport hiccup here does not change the
		// applicability decision.
		if conf, err := c.remote.ReadFile("/var/net-snmp/snmpd.conf"); err == nil && conf != "" {
			snmpdConf = conf
		} else if conf, err := c.remote.ReadFile("/var/etc/snmpd.conf"); err == nil {
			snmpdConf = conf
		}
	}

	if rocommunity == "" && strings.TrimSpace(snmpdConf) == "" {
		return catalog.NonApplicable, "SNMP appears disabled."
	}

	trapConfigured := trapserver != "" || trapstring != ""
	if snmpdConf != "" && (trapSinkRe.MatchString(snmpdConf) || trapSessRe.MatchString(snmpdConf)) {
		trapConfigured = true
	}
	if trapConfigured {
		return catalog.Compliant, "SNMP trap receiver configuration detected."
	}
	return catalog.NonCompliant, "No SNMP trap receiver found in config.xml or snmpd.conf."
}

func (c *Checker) checkNetSNMPPackage() (catalog.Verdict, string) {
	rocommunity, _ := c.doc.FindText("snmpd/rocommunity")

	var pkgsText string
	if pkgs, ok := c.doc.Find("installedpackages"); ok {
		pkgsText = pkgs.SubtreeText()
	}

	confExists := false
	if c.remote != nil {
		if ok, err := c.remote.FileExists("/var/net-snmp/snmpd.conf"); err == nil && ok {
			confExists = true
		} else if ok, err := c.remote.FileExists("/var/etc/snmpd.conf"); err == nil && ok {
			confExists = true
		}
	}

	if rocommunity == "" && !confExists {
		return catalog.NonApplicable, "SNMP appears disabled."
	}
	if strings.Contains(pkgsText, "net-snmp") || confExists {
		return catalog.Compliant, "NET-SNMP detected (package entry or snmpd.conf present)."
	}
	return catalog.NonCompliant,
		"SNMP is enabled but NET-SNMP evidence not found in installed packages or config."
}

// --- WAN rule-set checks ---

const noFilterNote = "No firewall filter block found in config.xml; cannot evaluate WAN rules."

// wanRules collects the firewall rules bound to the WAN interface. The
// second return is false when the filter block itself is absent: absence of
// evidence is not evidence of absence, so rule-set checks must not report
// Compliant in that case.
func (c *Checker) wanRules() ([]confdoc.Node, bool) {
	filter, ok := c.doc.Find("filter")
	if !ok {
		return nil, false
	}
	var rules []confdoc.Node
	for _, r := range filter.Children("rule") {
		if iface, _ := r.ChildText("interface"); iface == "wan" {
			rules = append(rules, r)
		}
	}
	return rules, true
}

func (c *Checker) checkWANAnyDestination() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		dest, ok := r.Child("destination")
		if !ok {
			continue
		}
		addr, _ := dest.ChildText("network")
		if addr == "" {
			addr, _ = dest.ChildText("address")
		}
		if strings.EqualFold(strings.TrimSpace(addr), "any") {
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d WAN rule(s) allow ANY destination.", count)
	}
	return catalog.Compliant, "No WAN rules allow ANY destination."
}

func (c *Checker) checkWANAnySource() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		src, ok := r.Child("source")
		if !ok {
			continue
		}
		addr, _ := src.ChildText("network")
		if addr == "" {
			addr, _ = src.ChildText("address")
		}
		if strings.EqualFold(strings.TrimSpace(addr), "any") {
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d WAN rule(s) allow ANY source.", count)
	}
	return catalog.Compliant, "No WAN rules allow ANY source."
}

func (c *Checker) checkWANAnyService() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		proto, _ := r.ChildText("protocol")
		switch strings.ToLower(proto) {
		case "any", "all", "":
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d WAN rule(s) permit ANY service/protocol.", count)
	}
	return catalog.Compliant, "No WAN rules allow ANY service/protocol."
}

func (c *Checker) checkWANDisabledRules() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		if _, disabled := r.Child("disabled"); disabled {
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d WAN rule(s) are disabled/unused.", count)
	}
	return catalog.Compliant, "No disabled/unused WAN rules found."
}

func (c *Checker) checkWANLogging() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		if _, logged := r.Child("log"); !logged {
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d WAN rule(s) do NOT have logging enabled.", count)
	}
	return catalog.Compliant, "All WAN rules have logging enabled."
}

func (c *Checker) checkWANICMPRules() (catalog.Verdict, string) {
	rules, ok := c.wanRules()
	if !ok {
		return catalog.NotReviewed, noFilterNote
	}
	count := 0
	for _, r := range rules {
		proto, _ := r.ChildText("protocol")
		if strings.ToLower(proto) != "icmp" {
			continue
		}
		icmpType, _ := r.ChildText("icmptype")
		switch strings.ToLower(icmpType) {
		case "", "any":
			count++
		}
	}
	if count > 0 {
		return catalog.NonCompliant, fmt.Sprintf("%d insecure ICMP rule(s) on WAN.", count)
	}
	return catalog.Compliant, "All WAN ICMP rules have specific ICMP types (or none exist)."
}

// --- VPN applicability checks ---

func (c *Checker) hasVPN() (openvpn, ipsec bool) {
	_, openvpn = c.doc.Find("openvpn/openvpn-server")
	_, ipsec = c.doc.Find("ipsec/phase1")
	return openvpn, ipsec
}

func (c *Checker) checkVPNAuth() (catalog.Verdict, string) {
	openvpn, ipsec := c.hasVPN()
	if !openvpn && !ipsec {
		return catalog.NonApplicable, "No OpenVPN server or IPsec Phase1 configuration detected."
	}
	return catalog.NotReviewed,
		"VPN configuration detected; verify VPN authentication uses RADIUS or LDAP."
}

func (c *Checker) checkVPNCertificate() (catalog.Verdict, string) {
	openvpn, ipsec := c.hasVPN()
	if !openvpn && !ipsec {
		return catalog.NonApplicable, "No VPN portal configuration detected."
	}
	return catalog.NotReviewed,
		"VPN configuration detected; verify a trusted signed certificate is used."
}

func (c *Checker) checkOpenVPNTLS() (catalog.Verdict, string) {
	if openvpn, _ := c.hasVPN(); !openvpn {
		return catalog.NonApplicable, "No OpenVPN server configuration detected."
	}
	return catalog.NotReviewed,
		"OpenVPN server found; verify TLS encryption settings per the benchmark."
}

func (c *Checker) checkOpenVPNCipher() (catalog.Verdict, string) {
	if openvpn, _ := c.hasVPN(); !openvpn {
		return catalog.NonApplicable, "No OpenVPN server configuration detected."
	}
	return catalog.NotReviewed,
		"OpenVPN server found; verify cipher and hash algorithms per the benchmark."
}
