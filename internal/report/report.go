// Package report renders a measurement for the operator.
//
// Every format carries the same figures: the summary block, the bit-level
// comparison of the leading window and the error-position listing.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/metrics"
)

const (
	// DiffWindow is the number of leading bits shown side by side.
	DiffWindow = 64
	// MaxListedPositions bounds the error-position listing.
	MaxListedPositions = 100
)

// Supported formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Input is everything a Renderer needs. Transmitted and Received must
// already be aligned to Report.Total.
type Input struct {
	RunID       string
	Report      metrics.Report
	Transmitted domain.BitSequence
	Received    domain.BitSequence
	Start       time.Time
	End         time.Time
}

// Renderer writes a human- or machine-readable rendering of in to w.
type Renderer interface {
	Render(w io.Writer, in Input) error
}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return Text{}, nil
	case FormatTable:
		return Table{}, nil
	case FormatJSON:
		return JSON{Indent: true}, nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidConfig, format)
	}
}

// Formats lists the names accepted by New.
func Formats() []string { return []string{FormatText, FormatTable, FormatJSON} }

// writeComparison writes the side-by-side view of the first DiffWindow bits.
func writeComparison(b *strings.Builder, in Input) {
	n := min(DiffWindow, in.Report.Total, in.Transmitted.Len(), in.Received.Len())
	tx := in.Transmitted.Prefix(n).String()
	rx := in.Received.Prefix(n).String()

	marks := make([]byte, n)
	count := 0
	for i := 0; i < n; i++ {
		if tx[i] != rx[i] {
			marks[i] = '^'
			count++
		} else {
			marks[i] = ' '
		}
	}

	fmt.Fprintf(b, "  First %d bits comparison (T=transmitted, R=received):\n", n)
	fmt.Fprintf(b, "  T: %s\n", tx)
	fmt.Fprintf(b, "  R: %s\n", rx)
	fmt.Fprintf(b, "     %s  (%d errors in first %d)\n", marks, count, n)
	b.WriteString("\n")
}

// writePositions writes the error-position listing.
func writePositions(b *strings.Builder, r metrics.Report) {
	switch {
	case r.Perfect():
		b.WriteString("  No errors detected — perfect transmission!\n")
	case r.Errors <= MaxListedPositions:
		fmt.Fprintf(b, "  Error positions: %s\n", formatPositions(r.Positions))
	default:
		b.WriteString("  (too many errors to list individually)\n")
	}
}

func formatPositions(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func mismatchLine(w *domain.LengthMismatchWarning) string {
	return fmt.Sprintf("  WARNING: %s, compared first %d", w.Error(), w.Compared())
}
