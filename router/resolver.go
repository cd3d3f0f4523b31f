package router

import (
	"strings"
)

// maxLoggedURL caps request URLs in debug lines.
const maxLoggedURL = 100

// Decision is the outcome of resolving one outgoing request URL.
type Decision struct {
	// ProxyURL is the canonical proxy URL to dial through. Empty means
	// connect directly.
	ProxyURL string
	// Provider and Pattern identify the rule that matched. Both are empty
	// for a direct decision.
	Provider string
	Pattern  string
}

// Direct reports whether the request should connect without a proxy.
func (d Decision) Direct() bool {
	return d.ProxyURL == ""
}

// Resolve scans the table's rules in compile order and returns the decision
// for the first pattern contained in the lowercased request URL. No match
// resolves to a direct connection: a provider absent from configuration is
// intentionally unproxied, not an error. A nil table always resolves
// direct.
//
// Resolve never mutates the table, so it is safe to call concurrently with
// table replacement.
func Resolve(rawURL string, t *Table) Decision {
	if t == nil {
		return Decision{}
	}

	needle := strings.ToLower(rawURL)
	for _, r := range t.rules {
		if strings.Contains(needle, r.pattern) {
			return Decision{ProxyURL: r.proxyURL, Provider: r.provider, Pattern: r.pattern}
		}
	}

	return Decision{}
}

// truncate shortens s to at most maxLen characters for log lines.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
