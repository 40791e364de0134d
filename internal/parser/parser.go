// Package parser extracts the received bit sequence from receiver output.
//
// The receiver commits to printing exactly one result line of the form
//
//	[label: ]received bits -> "<0/1 string>"
//
// ANSI escape sequences and trailing whitespace are ignored. Any other line
// containing the marker text is rejected rather than scanned loosely.
package parser

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/bft-labs/chanbench/internal/domain"
)

// Marker is the literal text that identifies a result line.
const Marker = "received bits"

var resultLine = regexp.MustCompile(`^\s*(?:[A-Za-z0-9_.\-]+:\s*)?received bits\s*->\s*"([01]+)"$`)

// Parse returns the bit sequence carried by the last conforming result line.
func Parse(output string) (domain.BitSequence, error) {
	var (
		found     string
		malformed int
		lineNo    int
	)

	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(stripansi.Strip(sc.Text()), " \t\r")
		if !strings.Contains(line, Marker) {
			continue
		}
		if m := resultLine.FindStringSubmatch(line); m != nil {
			found = m[1]
			malformed = 0
			continue
		}
		malformed = lineNo
	}
	if err := sc.Err(); err != nil {
		return domain.BitSequence{}, &domain.ParseError{Reason: "read output: " + err.Error(), Output: output}
	}

	if malformed > 0 {
		return domain.BitSequence{}, &domain.ParseError{Reason: "malformed marker line", Line: malformed, Output: output}
	}
	if found == "" {
		return domain.BitSequence{}, &domain.ParseError{Reason: "received-bits line not found", Output: output}
	}
	return domain.ParseBits(found)
}
