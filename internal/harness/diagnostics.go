package harness

import (
	"fmt"
	"io"
	"strings"
)

// WriteDiagnostics dumps the raw captured output of both children so the
// operator can see why a run failed.
func WriteDiagnostics(w io.Writer, o *Outcome) {
	if o == nil || o.Processes == nil {
		return
	}
	for _, p := range []struct {
		name   string
		output string
		trunc  bool
		code   int
	}{
		{string(o.Processes.Receiver.Role), o.Processes.Receiver.Output, o.Processes.Receiver.Truncated, o.Processes.Receiver.ExitCode},
		{string(o.Processes.Transmitter.Role), o.Processes.Transmitter.Output, o.Processes.Transmitter.Truncated, o.Processes.Transmitter.ExitCode},
	} {
		if p.name == "" {
			continue
		}
		note := ""
		if p.trunc {
			note = ", head truncated"
		}
		fmt.Fprintf(w, "----- %s output (exit %d%s) -----\n", p.name, p.code, note)
		io.WriteString(w, p.output)
		if p.output != "" && !strings.HasSuffix(p.output, "\n") {
			io.WriteString(w, "\n")
		}
		fmt.Fprintf(w, "----- end %s output -----\n", p.name)
	}
}
