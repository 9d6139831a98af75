// Package api defines the wire contract with the j-law-grep search backend
// and the HTTP client that speaks it.
package api

import (
	"encoding/json"
	"fmt"
)

// Mode selects how the backend interprets the query string.
type Mode string

const (
	// ModeLiteral matches the query as a literal phrase.
	ModeLiteral Mode = "literal"
	// ModeRegex interprets the query as a regular expression.
	ModeRegex Mode = "regex"
)

// ParseMode converts a string into a Mode, defaulting to literal.
func ParseMode(s string) Mode {
	if s == string(ModeRegex) {
		return ModeRegex
	}
	return ModeLiteral
}

// Valid reports whether the mode is one the backend accepts.
func (m Mode) Valid() bool {
	return m == ModeLiteral || m == ModeRegex
}

// Filter keys understood by the backend.
const (
	FilterLaw  = "law"
	FilterYear = "year"
)

// Size and page bounds enforced by the backend.
const (
	MinSize     = 1
	MaxSize     = 100
	DefaultSize = 20
)

// SearchRequest is the body of POST /api/search. It is an immutable
// snapshot derived from the controller state at submit time.
//
// Filters with empty values must never appear in the map: the backend
// treats an absent key as "no constraint" and a present key as an exact
// term filter, so sending "" would match nothing.
type SearchRequest struct {
	Q       string            `json:"q"`
	Mode    Mode              `json:"mode"`
	Filters map[string]string `json:"filters,omitempty"`
	Size    int               `json:"size"`
	Page    int               `json:"page"`
}

// Validate checks the request against the backend's documented bounds.
func (r SearchRequest) Validate() error {
	if r.Q == "" {
		return fmt.Errorf("query is required")
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("unknown mode: %q", r.Mode)
	}
	if r.Size < MinSize || r.Size > MaxSize {
		return fmt.Errorf("size must be between %d and %d, got %d", MinSize, MaxSize, r.Size)
	}
	if r.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", r.Page)
	}
	for key, val := range r.Filters {
		if val == "" {
			return fmt.Errorf("filter %q has an empty value; omit the key instead", key)
		}
	}
	return nil
}

// Key returns a canonical cache key for the request. Filters are part of
// the JSON map, which encoding/json emits with sorted keys, so identical
// requests always produce identical keys.
func (r SearchRequest) Key() string {
	data, _ := json.Marshal(r)
	return string(data)
}

// SearchHit is one matched document.
type SearchHit struct {
	// FileID uniquely identifies the document within the corpus.
	FileID string `json:"file_id"`

	// Path is the display label, e.g. "民法/709".
	Path string `json:"path"`

	// Line is the 1-based line of the match within the document.
	Line int `json:"line"`

	// Snippet is a short excerpt with backend-supplied <mark> highlight
	// markup. The backend owns escaping; clients must render the markup
	// as-is and never re-escape or sanitize it.
	Snippet string `json:"snippet"`

	// URL is a permalink to the provision. May be empty.
	URL string `json:"url"`

	// Blocks is structured provision data carried through unmodified.
	Blocks json.RawMessage `json:"blocks,omitempty"`
}

// SearchResponse is the body of a successful search. Hits are in the
// backend's relevance order and must not be re-sorted.
type SearchResponse struct {
	Hits   []SearchHit `json:"hits"`
	Total  int         `json:"total"`
	TookMS int         `json:"took_ms"`
}
