package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSON renders a machine-readable document.
type JSON struct {
	Indent bool
}

type jsonReport struct {
	RunID     string     `json:"run_id,omitempty"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Total     int        `json:"total_bits"`
	Correct   int        `json:"correct_bits"`
	Errors    int        `json:"bit_errors"`
	Accuracy  float64    `json:"accuracy_percent"`
	ErrorRate float64    `json:"error_rate_percent"`

	Positions       []int `json:"error_positions,omitempty"`
	PositionsElided bool  `json:"error_positions_elided,omitempty"`

	LengthMismatch *jsonMismatch `json:"length_mismatch,omitempty"`

	ElapsedSeconds *float64 `json:"elapsed_seconds,omitempty"`
	Bandwidth      *float64 `json:"bandwidth_bps,omitempty"`
	Goodput        *float64 `json:"goodput_bps,omitempty"`
}

type jsonMismatch struct {
	Transmitted int `json:"transmitted"`
	Received    int `json:"received"`
}

func (j JSON) Render(w io.Writer, in Input) error {
	r := in.Report
	doc := jsonReport{
		RunID:     in.RunID,
		Total:     r.Total,
		Correct:   r.Correct,
		Errors:    r.Errors,
		Accuracy:  r.Accuracy,
		ErrorRate: r.ErrorRate,
	}
	if !in.Start.IsZero() {
		doc.Start = &in.Start
	}
	if !in.End.IsZero() {
		doc.End = &in.End
	}
	if r.Errors > MaxListedPositions {
		doc.PositionsElided = true
	} else {
		doc.Positions = r.Positions
	}
	if r.Mismatch != nil {
		doc.LengthMismatch = &jsonMismatch{Transmitted: r.Mismatch.Transmitted, Received: r.Mismatch.Received}
	}
	if r.HasRates {
		secs := r.Elapsed.Seconds()
		doc.ElapsedSeconds = &secs
		doc.Bandwidth = &r.Bandwidth
		doc.Goodput = &r.Goodput
	}

	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
