// Package metrics compares a transmitted pattern with what the receiver
// reported and derives fidelity and throughput figures.
package metrics

import (
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
)

// Report is a read-only snapshot of one comparison.
type Report struct {
	Total     int
	Correct   int
	Errors    int
	Accuracy  float64 // percent
	ErrorRate float64 // percent

	// Positions lists every mismatched 0-based index below Total.
	Positions []int

	// Mismatch is set when the inputs differed in length and were truncated.
	Mismatch *domain.LengthMismatchWarning

	// Rate fields are only meaningful when HasRates is true.
	HasRates  bool
	Elapsed   time.Duration
	Bandwidth float64 // compared bits per second
	Goodput   float64 // correct bits per second
}

// Compute compares tx and rx position by position over their shared prefix.
// Rates are derived only when elapsed is strictly positive.
func Compute(tx, rx domain.BitSequence, elapsed time.Duration) Report {
	rec := domain.TransmissionRecord{Transmitted: tx, Received: rx}
	a, b := rec.Aligned()

	r := Report{
		Total:    a.Len(),
		Mismatch: rec.Mismatch(),
	}
	for i := 0; i < r.Total; i++ {
		if a.At(i) != b.At(i) {
			r.Positions = append(r.Positions, i)
		}
	}
	r.Errors = len(r.Positions)
	r.Correct = r.Total - r.Errors

	if r.Total > 0 {
		total := float64(r.Total)
		r.Accuracy = float64(r.Correct) / total * 100
		r.ErrorRate = float64(r.Errors) / total * 100
	}

	if elapsed > 0 {
		secs := elapsed.Seconds()
		r.HasRates = true
		r.Elapsed = elapsed
		r.Bandwidth = float64(r.Total) / secs
		r.Goodput = float64(r.Correct) / secs
	}
	return r
}

// FromRecord computes a report for rec using the given elapsed duration.
func FromRecord(rec domain.TransmissionRecord, elapsed time.Duration) Report {
	return Compute(rec.Transmitted, rec.Received, elapsed)
}

// Perfect reports whether no compared position differed.
func (r Report) Perfect() bool { return r.Errors == 0 }
