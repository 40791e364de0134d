package orchestrator

import (
	"errors"
	"os/exec"
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/log"
)

// process is a launched child owned by a single Run call.
type process struct {
	role domain.Role
	path string
	args []string
	cmd  *exec.Cmd
	out  *captureBuffer

	started time.Time
	exited  time.Time
	waited  bool
}

// wait blocks until the child exits and its output is drained.
func (p *process) wait(logger log.Logger) {
	if p.waited {
		return
	}
	p.waited = true

	err := p.cmd.Wait()
	p.exited = time.Now()
	p.out.Flush()

	code := p.cmd.ProcessState.ExitCode()
	fields := []log.Field{
		log.Role(p.role),
		log.Int("exit_code", code),
		log.Duration("runtime", p.exited.Sub(p.started)),
		log.Int("output_bytes", int(p.out.TotalBytes())),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Info("process exited", fields...)
	case errors.As(err, &exitErr):
		logger.Warn("process exited with failure status", fields...)
	default:
		logger.Warn("process wait failed", append(fields, log.Err(err))...)
	}
}

func (p *process) kill() {
	if p.cmd.Process != nil {
		_ = killProcessGroup(p.cmd.Process)
	}
}

func (p *process) result() ProcessResult {
	code := -1
	if p.cmd.ProcessState != nil {
		code = p.cmd.ProcessState.ExitCode()
	}
	return ProcessResult{
		Role:      p.role,
		Path:      p.path,
		Args:      p.args,
		Output:    p.out.String(),
		Truncated: p.out.Truncated(),
		ExitCode:  code,
		Started:   p.started,
		Exited:    p.exited,
	}
}
