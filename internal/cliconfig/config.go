package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/chanbench/internal/bitgen"
	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/orchestrator"
	"github.com/bft-labs/chanbench/internal/report"
	"github.com/bft-labs/chanbench/internal/timing"
)

// Config holds CLI configuration for chanbench.
type Config struct {
	Bits      int
	MinBits   int
	Threshold float64

	Receiver        string
	ReceiverArgs    []string
	Transmitter     string
	TransmitterArgs []string

	CalibrationDelay time.Duration
	Timeout          time.Duration

	Baseline string
	Seed     int64
	SeedSet  bool

	Format          string
	MetricsTextfile string
	Watch           bool
	LogLevel        string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Bits:             bitgen.DefaultMinBits,
		MinBits:          bitgen.DefaultMinBits,
		Receiver:         "./receiver",
		Transmitter:      "./transmitter",
		CalibrationDelay: orchestrator.DefaultCalibrationDelay,
		Timeout:          orchestrator.DefaultTimeout,
		Baseline:         timing.PolicyStart,
		Format:           report.FormatText,
		LogLevel:         "info",
	}
}

// EnforceBitFloor raises Bits to MinBits. It reports whether Bits changed.
func (c *Config) EnforceBitFloor() bool {
	if c.MinBits <= 0 {
		c.MinBits = bitgen.DefaultMinBits
	}
	if c.Bits < c.MinBits {
		c.Bits = c.MinBits
		return true
	}
	return false
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinBits <= 0 {
		return invalid("min-bits must be positive")
	}
	if c.Bits < c.MinBits {
		return invalid("bits %d below minimum %d", c.Bits, c.MinBits)
	}
	if c.Threshold < 0 {
		return invalid("threshold must not be negative")
	}
	if strings.TrimSpace(c.Receiver) == "" {
		return invalid("receiver is required")
	}
	if strings.TrimSpace(c.Transmitter) == "" {
		return invalid("transmitter is required")
	}
	if c.CalibrationDelay < 0 {
		return invalid("delay must not be negative")
	}
	if c.Timeout < 0 {
		return invalid("timeout must not be negative")
	}
	if _, err := timing.Parse(c.Baseline); err != nil {
		return err
	}
	if _, err := report.New(c.Format); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("log-level: %v", err)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setSeed sets the seed from a pointer and marks it as set.
func (s *configSetter) setSeed(flag string, value *int64, cfg *Config) {
	if value == nil || s.changed[flag] {
		return
	}
	cfg.Seed = *value
	cfg.SeedSet = true
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setSeedFromString parses a seed from an environment variable.
func (s *configSetter) setSeedFromString(flag, value string, cfg *Config) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	seed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	cfg.Seed = seed
	cfg.SeedSet = true
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
