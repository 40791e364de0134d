package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"CHANBENCH_BITS":              "1024",
				"CHANBENCH_THRESHOLD":         "5000",
				"CHANBENCH_RECEIVER":          "/env/rx",
				"CHANBENCH_RECEIVER_ARGS":     "-c 2",
				"CHANBENCH_CALIBRATION_DELAY": "1s",
				"CHANBENCH_TIMEOUT":           "5m",
				"CHANBENCH_BASELINE":          "next-minute",
				"CHANBENCH_SEED":              "0",
				"CHANBENCH_FORMAT":            "table",
				"CHANBENCH_WATCH":             "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Bits:             1024,
				Threshold:        5000,
				Receiver:         "/env/rx",
				ReceiverArgs:     []string{"-c", "2"},
				CalibrationDelay: time.Second,
				Timeout:          5 * time.Minute,
				Baseline:         "next-minute",
				Seed:             0,
				SeedSet:          true,
				Format:           "table",
				Watch:            true,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"CHANBENCH_BITS":        "1024",
				"CHANBENCH_TRANSMITTER": "/env/tx",
			},
			changed: map[string]bool{"bits": true},
			initial: Config{Bits: 600},
			expected: Config{
				Bits:        600,
				Transmitter: "/env/tx",
			},
			wantErr: false,
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"CHANBENCH_TIMEOUT": "forever"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"CHANBENCH_BITS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"CHANBENCH_THRESHOLD": "auto"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid seed",
			envVars: map[string]string{"CHANBENCH_SEED": "0x10"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"CHANBENCH_WATCH": "false"},
			changed:  map[string]bool{},
			initial:  Config{Watch: true},
			expected: Config{Watch: false},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config =\n%+v\nwant\n%+v", cfg, tt.expected)
			}
		})
	}
}
