// Package harreport builds an offline failure report from a browser
// HTTP Archive (HAR) capture: which requests failed, and which domains
// would need whitelisting for the page to load.
//
// It shares no runtime with the bridge; the report is a one-shot scan
// of a capture file.
package harreport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

type archive struct {
	Log struct {
		Entries []entry `json:"entries"`
	} `json:"log"`
}

type entry struct {
	Request struct {
		URL string `json:"url"`
	} `json:"request"`
	Response struct {
		Status     int    `json:"status"`
		StatusText string `json:"statusText"`
	} `json:"response"`
}

// FailedRequest is one failing entry from a capture.
type FailedRequest struct {
	URL    string
	Domain string
	Status int
	Reason string
}

// Report summarizes the failures found in one capture.
type Report struct {
	// TotalEntries is how many requests the capture holds.
	TotalEntries int

	// Requests lists the failing entries in capture order.
	Requests []FailedRequest

	// Domains is the sorted, de-duplicated set of failing hosts.
	Domains []string
}

// Parse reads a HAR capture and classifies its entries. Status -1 or 0
// means the request never completed (DNS or network failure); status
// 400 and up is an HTTP error; a statusText mentioning "error" is
// counted as failing regardless of status. Entries whose URL has no
// usable host are skipped.
func Parse(r io.Reader) (Report, error) {
	var har archive
	if err := json.NewDecoder(r).Decode(&har); err != nil {
		return Report{}, fmt.Errorf("decode HAR: %w", err)
	}

	rep := Report{TotalEntries: len(har.Log.Entries)}
	seen := map[string]bool{}

	for _, e := range har.Log.Entries {
		reason, failed := classify(e)
		if !failed {
			continue
		}
		domain := hostOf(e.Request.URL)
		if domain == "" {
			continue
		}
		rep.Requests = append(rep.Requests, FailedRequest{
			URL:    e.Request.URL,
			Domain: domain,
			Status: e.Response.Status,
			Reason: reason,
		})
		if !seen[domain] {
			seen[domain] = true
			rep.Domains = append(rep.Domains, domain)
		}
	}

	sort.Strings(rep.Domains)
	return rep, nil
}

func classify(e entry) (string, bool) {
	status := e.Response.Status
	text := e.Response.StatusText
	switch {
	case status == -1 || status == 0:
		return "DNS/Network failure", true
	case status >= 400:
		return fmt.Sprintf("HTTP %d %s", status, text), true
	case strings.Contains(strings.ToLower(text), "error"):
		return text, true
	}
	return "", false
}

// hostOf extracts and normalizes the host of a request URL: lowercase,
// no port, no trailing dot, internationalized names converted to their
// punycode form so the output matches what the whitelist tool expects.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host
}
