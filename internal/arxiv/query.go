// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"strings"
)

// BuildQuery returns the full arXiv API URL for one page of results.
// Each term is percent-encoded and wrapped in double quotes; terms are
// joined with +OR+. An empty term list searches for the empty phrase "".
// Results are sorted by last update, newest first.
func BuildQuery(base string, terms []string, start, maxResults int) string {
	search := `""`
	if len(terms) > 0 {
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = `"` + quote(t) + `"`
		}
		search = strings.Join(quoted, "+OR+")
	}
	return fmt.Sprintf("%s?search_query=%s&sortBy=lastUpdatedDate&sortOrder=descending&start=%d&max_results=%d",
		base, search, start, maxResults)
}

const upperhex = "0123456789ABCDEF"

// quote percent-encodes s, leaving ASCII letters, digits, "_.-~" and "/"
// untouched. Spaces become %20, not '+', since '+' is the arXiv query
// separator.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}
