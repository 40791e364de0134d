// Package timing decides which instant an elapsed-time measurement starts from.
//
// Two policies are offered:
//
//   - start: elapsed time runs from the transmitter launch to the receiver exit
//   - next-minute: the transmitter launch is snapped to the next whole-minute
//     boundary first, for transmitter/receiver pairs that agree to begin
//     sending on a minute boundary instead of using a sync file
//
// Whether the minute snap is a channel convention or an accident of one
// transmitter variant is unresolved, so it is opt-in and never the default.
package timing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
)

// Policy maps the transmitter start time to the measurement baseline.
type Policy interface {
	Name() string
	Baseline(txStart time.Time) time.Time
}

const (
	PolicyStart      = "start"
	PolicyNextMinute = "next-minute"
)

// Start uses the transmitter start unchanged.
type Start struct{}

func (Start) Name() string                         { return PolicyStart }
func (Start) Baseline(txStart time.Time) time.Time { return txStart }

// NextMinute moves the baseline to the next whole minute strictly after
// the transmitter start. A start exactly on a boundary moves a full minute.
type NextMinute struct{}

func (NextMinute) Name() string { return PolicyNextMinute }

func (NextMinute) Baseline(txStart time.Time) time.Time {
	return txStart.Truncate(time.Minute).Add(time.Minute)
}

// Parse resolves a policy name. The empty string selects Start.
func Parse(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyStart:
		return Start{}, nil
	case PolicyNextMinute:
		return NextMinute{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown baseline policy %q (want %s or %s)",
			domain.ErrInvalidConfig, name, PolicyStart, PolicyNextMinute)
	}
}

// Elapsed returns end minus the policy baseline of start. The result may
// be zero or negative; callers treat that as "no rate available".
func Elapsed(p Policy, start, end time.Time) time.Duration {
	if p == nil {
		p = Start{}
	}
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(p.Baseline(start))
}
