package cliconfig

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// The same fields are accepted from YAML files.
type FileConfig struct {
	Bits             int      `toml:"bits" yaml:"bits"`
	MinBits          int      `toml:"min_bits" yaml:"min_bits"`
	Threshold        float64  `toml:"threshold" yaml:"threshold"`
	Receiver         string   `toml:"receiver" yaml:"receiver"`
	ReceiverArgs     []string `toml:"receiver_args" yaml:"receiver_args"`
	Transmitter      string   `toml:"transmitter" yaml:"transmitter"`
	TransmitterArgs  []string `toml:"transmitter_args" yaml:"transmitter_args"`
	CalibrationDelay string   `toml:"calibration_delay" yaml:"calibration_delay"`
	Timeout          string   `toml:"timeout" yaml:"timeout"`
	Baseline         string   `toml:"baseline" yaml:"baseline"`
	Seed             *int64   `toml:"seed" yaml:"seed"`
	Format           string   `toml:"format" yaml:"format"`
	MetricsTextfile  string   `toml:"metrics_textfile" yaml:"metrics_textfile"`
	Watch            *bool    `toml:"watch" yaml:"watch"`
	LogLevel         string   `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads and parses a config file from the given path.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.chanbench/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".chanbench", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("receiver", fc.Receiver, &cfg.Receiver)
	s.setString("transmitter", fc.Transmitter, &cfg.Transmitter)
	s.setStrings("receiver-arg", fc.ReceiverArgs, &cfg.ReceiverArgs)
	s.setStrings("transmitter-arg", fc.TransmitterArgs, &cfg.TransmitterArgs)
	s.setString("baseline", fc.Baseline, &cfg.Baseline)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("metrics-textfile", fc.MetricsTextfile, &cfg.MetricsTextfile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("delay", fc.CalibrationDelay, &cfg.CalibrationDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setInt("bits", fc.Bits, &cfg.Bits)
	s.setInt("min-bits", fc.MinBits, &cfg.MinBits)
	s.setFloat("threshold", fc.Threshold, &cfg.Threshold)
	s.setSeed("seed", fc.Seed, cfg)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
