// Package promexport writes the figures of a single run in the Prometheus
// text exposition format, for pickup by a node_exporter textfile collector.
// Each run overwrites the previous snapshot.
package promexport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/chanbench/internal/metrics"
)

const namespace = "chanbench"

// Gather builds a registry holding the gauges of r.
func Gather(runID string, r metrics.Report) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"run_id": runID}

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	gauge("bits_compared", "Number of bit positions compared in the last run.", float64(r.Total))
	gauge("bits_correct", "Number of correctly received bits in the last run.", float64(r.Correct))
	gauge("bit_errors", "Number of mismatched bit positions in the last run.", float64(r.Errors))
	gauge("accuracy_percent", "Share of compared bits received correctly.", r.Accuracy)
	gauge("error_rate_percent", "Bit error rate of the last run.", r.ErrorRate)

	mismatch := 0.0
	if r.Mismatch != nil {
		mismatch = 1
	}
	gauge("length_mismatch", "1 when the received length differed from the transmitted length.", mismatch)

	if r.HasRates {
		gauge("elapsed_seconds", "Wall-clock duration of the measurement window.", r.Elapsed.Seconds())
		gauge("bandwidth_bits_per_second", "Compared bits per second.", r.Bandwidth)
		gauge("goodput_bits_per_second", "Correctly received bits per second.", r.Goodput)
	}
	return reg
}

// WriteTextfile atomically replaces path with the gauges of r.
func WriteTextfile(path, runID string, r metrics.Report) error {
	return prometheus.WriteToTextfile(path, Gather(runID, r))
}
