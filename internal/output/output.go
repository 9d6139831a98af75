// Package output renders one-shot search results and status messages for
// the non-interactive CLI surface.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/snippet"
)

// Format selects the result rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Results renders a search response in the given format.
func (w *Writer) Results(resp *api.SearchResponse, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	w.textResults(resp)
	return nil
}

// textResults renders the text format: a summary line, then one block
// per hit with the snippet's highlight markup stripped to plain text.
func (w *Writer) textResults(resp *api.SearchResponse) {
	_, _ = fmt.Fprintf(w.out, "検索結果 %d件 (%d ms)\n", resp.Total, resp.TookMS)

	if len(resp.Hits) == 0 {
		_, _ = fmt.Fprintln(w.out, "該当する条文が見つかりませんでした")
		return
	}

	for _, hit := range resp.Hits {
		w.Newline()
		if hit.Line > 0 {
			_, _ = fmt.Fprintf(w.out, "%s:%d\n", hit.Path, hit.Line)
		} else {
			_, _ = fmt.Fprintln(w.out, hit.Path)
		}
		for _, line := range strings.Split(snippet.Plain(hit.Snippet), "\n") {
			_, _ = fmt.Fprintf(w.out, "  %s\n", line)
		}
		if hit.URL != "" {
			_, _ = fmt.Fprintf(w.out, "  → %s\n", hit.URL)
		}
	}
}
