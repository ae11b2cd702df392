// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-notify pipeline:
// the Article produced by the catalog fetcher and the validated settings
// the driver hands to each stage.
package types

import "time"

// Article is one catalog entry returned by the arXiv fetcher.
type Article struct {
	// Title is the entry title with internal line breaks collapsed.
	Title string `json:"title" yaml:"title"`

	// Link is the canonical abstract URL (the Atom entry id).
	Link string `json:"link" yaml:"link"`

	// Abstract is the entry summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Updated is the entry's last-updated timestamp.
	Updated time.Time `json:"updated" yaml:"updated"`
}

// KeywordDigest groups the articles fetched for a single keyword.
type KeywordDigest struct {
	Keyword  string    `json:"keyword" yaml:"keyword"`
	Articles []Article `json:"articles" yaml:"articles"`
}
