package bridge

import (
	"regexp"
	"strings"
)

// Marker tokens of the whitelist CLI's human-readable output. The tool
// exposes no structured format; these substrings are the de facto
// protocol, and this file is the only place the bridge inspects its
// stdout. If the tool's output changes, update the markers here.
const (
	markerWhitelistedES = "SÍ"
	markerWhitelistedEN = "YES"
	markerResolveArrow  = "→"
)

var resolvedIPPattern = regexp.MustCompile(`→\s*(\S+)`)

// parseCheckOutput interprets `whitelist check <domain>` stdout: an
// affirmative token means the domain is whitelisted, the resolve arrow
// means DNS resolution succeeded, and the token after the arrow is the
// resolved address.
func parseCheckOutput(stdout string) (inWhitelist, resolves bool, resolvedIP *string) {
	inWhitelist = strings.Contains(stdout, markerWhitelistedES) ||
		strings.Contains(stdout, markerWhitelistedEN)
	if strings.Contains(stdout, markerResolveArrow) {
		resolves = true
		if m := resolvedIPPattern.FindStringSubmatch(stdout); m != nil {
			resolvedIP = &m[1]
		}
	}
	return inWhitelist, resolves, resolvedIP
}

// parseDomainList splits `whitelist domains` stdout into trimmed,
// non-empty lines.
func parseDomainList(stdout string) []string {
	domains := []string{}
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			domains = append(domains, line)
		}
	}
	return domains
}

// statusActive reports whether `whitelist status` stdout claims the
// system is running, in either locale the tool speaks.
func statusActive(stdout string) bool {
	lower := strings.ToLower(stdout)
	return strings.Contains(lower, "activo") || strings.Contains(lower, "active")
}
