// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	const base = "http://export.arxiv.org/api/query"
	tests := []struct {
		name       string
		terms      []string
		start, max int
		want       string
	}{
		{
			name:  "no terms",
			terms: nil,
			start: 0, max: 30,
			want: base + `?search_query=""&sortBy=lastUpdatedDate&sortOrder=descending&start=0&max_results=30`,
		},
		{
			name:  "single term",
			terms: []string{"transformers"},
			start: 0, max: 30,
			want: base + `?search_query="transformers"&sortBy=lastUpdatedDate&sortOrder=descending&start=0&max_results=30`,
		},
		{
			name:  "terms joined with OR",
			terms: []string{"ai", "ml"},
			start: 30, max: 30,
			want: base + `?search_query="ai"+OR+"ml"&sortBy=lastUpdatedDate&sortOrder=descending&start=30&max_results=30`,
		},
		{
			name:  "terms are percent-encoded",
			terms: []string{"large language models", "c++&go"},
			start: 60, max: 30,
			want: base + `?search_query="large%20language%20models"+OR+"c%2B%2B%26go"&sortBy=lastUpdatedDate&sortOrder=descending&start=60&max_results=30`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(base, tt.terms, tt.start, tt.max))
		})
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"abc":        "abc",
		"a b":        "a%20b",
		"a/b":        "a/b",
		"x_y.z-w~":   "x_y.z-w~",
		`"quoted"`:   "%22quoted%22",
		"ü":          "%C3%BC",
		"key=value?": "key%3Dvalue%3F",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, quote(in), "quote(%q)", in)
	}
}
