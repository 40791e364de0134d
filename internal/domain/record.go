package domain

import "time"

// TransmissionRecord pairs the transmitted pattern with what the receiver
// reported, plus the wall-clock bounds of the run.
type TransmissionRecord struct {
	Transmitted BitSequence
	Received    BitSequence

	// Start is when the transmitter was launched.
	Start time.Time
	// End is when the receiver exited.
	End time.Time
}

// Compared returns min(len(Transmitted), len(Received)).
func (r TransmissionRecord) Compared() int {
	return min(r.Transmitted.Len(), r.Received.Len())
}

// Mismatch returns a warning when the two sequences differ in length, or nil.
func (r TransmissionRecord) Mismatch() *LengthMismatchWarning {
	if r.Transmitted.Len() == r.Received.Len() {
		return nil
	}
	return &LengthMismatchWarning{Transmitted: r.Transmitted.Len(), Received: r.Received.Len()}
}

// Aligned returns both sequences truncated to the compared length.
func (r TransmissionRecord) Aligned() (tx, rx BitSequence) {
	n := r.Compared()
	return r.Transmitted.Prefix(n), r.Received.Prefix(n)
}
