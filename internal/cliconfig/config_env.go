package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables (CHANBENCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("receiver", os.Getenv("CHANBENCH_RECEIVER"), &cfg.Receiver)
	s.setString("transmitter", os.Getenv("CHANBENCH_TRANSMITTER"), &cfg.Transmitter)
	s.setStrings("receiver-arg", strings.Fields(os.Getenv("CHANBENCH_RECEIVER_ARGS")), &cfg.ReceiverArgs)
	s.setStrings("transmitter-arg", strings.Fields(os.Getenv("CHANBENCH_TRANSMITTER_ARGS")), &cfg.TransmitterArgs)
	s.setString("baseline", os.Getenv("CHANBENCH_BASELINE"), &cfg.Baseline)
	s.setString("format", os.Getenv("CHANBENCH_FORMAT"), &cfg.Format)
	s.setString("metrics-textfile", os.Getenv("CHANBENCH_METRICS_TEXTFILE"), &cfg.MetricsTextfile)
	s.setString("log-level", os.Getenv("CHANBENCH_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("delay", os.Getenv("CHANBENCH_CALIBRATION_DELAY"), &cfg.CalibrationDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("CHANBENCH_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	if err := s.setIntFromString("bits", os.Getenv("CHANBENCH_BITS"), &cfg.Bits); err != nil {
		return err
	}
	if err := s.setIntFromString("min-bits", os.Getenv("CHANBENCH_MIN_BITS"), &cfg.MinBits); err != nil {
		return err
	}
	if err := s.setFloatFromString("threshold", os.Getenv("CHANBENCH_THRESHOLD"), &cfg.Threshold); err != nil {
		return err
	}
	if err := s.setSeedFromString("seed", os.Getenv("CHANBENCH_SEED"), cfg); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("CHANBENCH_WATCH"), &cfg.Watch)

	return nil
}
