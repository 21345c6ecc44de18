package harreport

import (
	"fmt"
	"io"
	"strings"
)

const banner = "================================================================================"
const rule = "--------------------------------------------------------------------------------"

// Write renders rep as a plain-text report. At most limit failing
// requests are detailed (the domain list is always complete); limit <=
// 0 means no cap.
func Write(w io.Writer, rep Report, limit int) error {
	requests := rep.Requests
	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString("FAILING REQUESTS SUMMARY\n")
	b.WriteString(banner + "\n\n")
	fmt.Fprintf(&b, "Total failing requests: %d\n", len(rep.Requests))
	fmt.Fprintf(&b, "Unique failing domains: %d\n\n", len(rep.Domains))

	if len(requests) > 0 {
		b.WriteString("FAILING REQUESTS:\n")
		b.WriteString(rule + "\n")
		for _, req := range requests {
			fmt.Fprintf(&b, "Domain: %s\n", req.Domain)
			fmt.Fprintf(&b, "  URL: %s\n", truncate(req.URL, 100))
			fmt.Fprintf(&b, "  Status: %d - %s\n\n", req.Status, req.Reason)
		}
	}

	if len(rep.Domains) > 0 {
		b.WriteString(banner + "\n")
		b.WriteString("DOMAINS TO ADD TO WHITELIST:\n")
		b.WriteString(banner + "\n")
		for _, domain := range rep.Domains {
			b.WriteString(domain + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
