// Package barcode turns raw scan payloads into candidate barcodes and
// search keywords. Scanners deliver anything from a bare EAN to a product
// page URL, so extraction is a priority list of increasingly loose rules.
package barcode

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
)

const prefix = "barcode:"

var digitRun = regexp.MustCompile(`\d{8,18}`)

// Extract parses a raw scan payload into a barcode. First match wins:
//
//  1. "barcode:" prefixed value
//  2. the whole trimmed value
//  3. URI query parameters "barcode" / "code"
//  4. a digit run in the URI path
//  5. a digit run anywhere in the raw string
//  6. the raw string reduced to digits only
//
// Returns ("", false) when no rule produced a valid 8-18 digit code.
func Extract(rawValue string) (string, bool) {
	raw := strings.TrimSpace(rawValue)
	if raw == "" {
		return "", false
	}

	if strings.HasPrefix(strings.ToLower(raw), prefix) {
		rest := strings.TrimSpace(raw[len(prefix):])
		if suggest.IsValidBarcode(rest) {
			return rest, true
		}
	}

	if suggest.IsValidBarcode(raw) {
		return raw, true
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		q := u.Query()
		for _, param := range []string{"barcode", "code"} {
			if v := q.Get(param); suggest.IsValidBarcode(v) {
				return v, true
			}
		}
		if m := digitRun.FindString(u.Path); suggest.IsValidBarcode(m) {
			return m, true
		}
	}

	if m := digitRun.FindString(raw); suggest.IsValidBarcode(m) {
		return m, true
	}

	if d := suggest.DigitsOnly(raw); suggest.IsValidBarcode(d) {
		return d, true
	}

	return "", false
}

// ExtractKeyword pulls a free-text search keyword out of a scan payload:
// the last non-numeric path segment of a URL (decoded), a query term, or
// the raw text itself when it is more than just a code. Returns "" when
// the payload carries nothing searchable.
func ExtractKeyword(rawValue string) string {
	raw := strings.TrimSpace(rawValue)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), prefix) {
		raw = strings.TrimSpace(raw[len(prefix):])
	}
	if suggest.DigitsOnly(raw) == raw {
		return ""
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		q := u.Query()
		for _, param := range []string{"q", "query", "keyword", "name", "title"} {
			if v := strings.TrimSpace(q.Get(param)); v != "" {
				return v
			}
		}
		segments := strings.Split(u.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			seg, err := url.PathUnescape(segments[i])
			if err != nil {
				seg = segments[i]
			}
			seg = strings.TrimSpace(seg)
			if seg == "" || suggest.DigitsOnly(seg) == seg {
				continue
			}
			return seg
		}
		return ""
	}

	return raw
}
