package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess plays the receiver or transmitter when the test binary
// is launched as a child. The transmitter hands its pattern to the receiver
// through the HELPER_SYNC file.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	sync := os.Getenv("HELPER_SYNC")
	switch role, flags := args[1], args[2:]; role {
	case "receiver":
		if os.Getenv("HELPER_RX_MODE") == "garbage" {
			fmt.Println("receiver: lost carrier")
			os.Exit(0)
		}
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if data, err := os.ReadFile(sync); err == nil && strings.HasSuffix(string(data), "\n") {
				fmt.Printf("receiver: received bits -> %q\n", strings.TrimSpace(string(data)))
				os.Exit(0)
			}
			time.Sleep(10 * time.Millisecond)
		}
		os.Exit(1)
	case "transmitter":
		if len(flags) != 2 || flags[0] != "--binary" {
			os.Exit(1)
		}
		if err := os.WriteFile(sync, []byte(flags[1]+"\n"), 0o644); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(2)
}

// helperArgs isolates the environment and returns flags that run both
// roles as this test binary.
func helperArgs(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{"BITS", "MIN_BITS", "FORMAT", "LOG_LEVEL", "RECEIVER", "TRANSMITTER",
		"RECEIVER_ARGS", "TRANSMITTER_ARGS", "BASELINE", "SEED", "WATCH", "METRICS_TEXTFILE"} {
		t.Setenv("CHANBENCH_"+k, "")
	}
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_SYNC", filepath.Join(dir, "sync"))

	role := func(name string) []string {
		return []string{
			"--" + name, os.Args[0],
			"--" + name + "-arg=-test.run=^TestHelperProcess$",
			"--" + name + "-arg=--",
			"--" + name + "-arg=" + name,
		}
	}
	args := append(role("receiver"), role("transmitter")...)
	return append(args, "--delay", "50ms", "--timeout", "20s")
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExecute_RaisesBitsToFloor(t *testing.T) {
	args := append(helperArgs(t), "--bits", "100", "--seed", "7")

	code, out, errOut := runCLI(t, args...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Total bits transmitted : 512\n")
	assert.Contains(t, out, "No errors detected")
	assert.Contains(t, errOut, "bit count raised to minimum")
}

func TestExecute_FlagBeatsEnv(t *testing.T) {
	base := helperArgs(t)
	t.Setenv("CHANBENCH_BITS", "600")

	code, out, errOut := runCLI(t, base...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Total bits transmitted : 600\n")

	require.NoError(t, os.Remove(os.Getenv("HELPER_SYNC")))
	code, out, errOut = runCLI(t, append(base, "--bits", "1024")...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Total bits transmitted : 1024\n")
}

func TestExecute_ParseFailureExitsOne(t *testing.T) {
	args := helperArgs(t)
	t.Setenv("HELPER_RX_MODE", "garbage")

	code, out, errOut := runCLI(t, args...)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "----- receiver output")
	assert.Contains(t, errOut, "receiver: lost carrier")
}

func TestExecute_LaunchFailureExitsOne(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-receiver")
	args := append(helperArgs(t), "--receiver", missing)

	code, out, errOut := runCLI(t, args...)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, missing)
}

func TestExecute_InvalidConfigExitsOne(t *testing.T) {
	args := append(helperArgs(t), "--format", "xml")

	code, _, errOut := runCLI(t, args...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "xml")
}

func TestCommand_ArgFlagsAreVerbatim(t *testing.T) {
	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	cmd := a.command()

	require.NoError(t, cmd.ParseFlags([]string{
		"--receiver", "taskset",
		"--receiver-arg=-c", "--receiver-arg=2,3", "--receiver-arg=./receiver",
		"--transmitter-arg=--mode=a,b",
	}))
	assert.Equal(t, []string{"-c", "2,3", "./receiver"}, a.cfg.ReceiverArgs)
	assert.Equal(t, []string{"--mode=a,b"}, a.cfg.TransmitterArgs)
}
