// Package snippet splits backend-highlighted excerpts into renderable
// segments.
//
// The backend owns HTML safety for snippets: it escapes document content
// and injects only <mark> tags around matched terms. By contract this
// package trusts that markup. It splits on the highlight tags and passes
// all other text through byte-for-byte, with no escaping, unescaping, or
// sanitizing of any kind.
package snippet

import "strings"

// Highlight tags injected by the backend highlighter.
const (
	openTag  = "<mark>"
	closeTag = "</mark>"
)

// Segment is a run of snippet text that is either highlighted or plain.
type Segment struct {
	Text      string
	Highlight bool
}

// Parse splits a snippet into plain and highlighted segments, in order.
// Empty segments are dropped. An opening tag without a closing tag
// degrades gracefully: the remainder is treated as plain text.
func Parse(s string) []Segment {
	if s == "" {
		return nil
	}

	var segs []Segment
	for {
		open := strings.Index(s, openTag)
		if open < 0 {
			if s != "" {
				segs = append(segs, Segment{Text: s})
			}
			return segs
		}

		rest := s[open+len(openTag):]
		closing := strings.Index(rest, closeTag)
		if closing < 0 {
			// Unbalanced markup; keep everything readable.
			segs = append(segs, Segment{Text: s[:open] + rest})
			return segs
		}

		if open > 0 {
			segs = append(segs, Segment{Text: s[:open]})
		}
		if closing > 0 {
			segs = append(segs, Segment{Text: rest[:closing], Highlight: true})
		}
		s = rest[closing+len(closeTag):]
	}
}

// Plain returns the snippet text with highlight tags removed.
// Used for JSON-free plain output and width calculations.
func Plain(s string) string {
	var sb strings.Builder
	for _, seg := range Parse(s) {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}
