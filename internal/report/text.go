package report

import (
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("=", 50)

// Text renders the fixed-format summary.
type Text struct{}

func (Text) Render(w io.Writer, in Input) error {
	r := in.Report
	var b strings.Builder

	if r.Mismatch != nil {
		b.WriteString(mismatchLine(r.Mismatch) + "\n")
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "  Total bits transmitted : %d\n", r.Total)
	fmt.Fprintf(&b, "  Correct bits           : %d\n", r.Correct)
	fmt.Fprintf(&b, "  Bit errors             : %d\n", r.Errors)
	fmt.Fprintf(&b, "  Accuracy               : %.2f%%\n", r.Accuracy)
	fmt.Fprintf(&b, "  Error rate             : %.2f%%\n", r.ErrorRate)
	if r.HasRates {
		fmt.Fprintf(&b, "  Elapsed time           : %.3f s\n", r.Elapsed.Seconds())
		fmt.Fprintf(&b, "  Bandwidth              : %.2f bits/s\n", r.Bandwidth)
		fmt.Fprintf(&b, "  Goodput                : %.2f bits/s\n", r.Goodput)
	}
	b.WriteString(rule + "\n\n")

	writeComparison(&b, in)
	writePositions(&b, r)

	_, err := io.WriteString(w, b.String())
	return err
}
