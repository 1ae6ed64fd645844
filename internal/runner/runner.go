// Package runner executes one external process with captured output and a
// hard wall-clock timeout.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/programme-lv/kernval/internal"
)

// waitDelay bounds how long Wait keeps draining pipes after the process
// group has been killed.
const waitDelay = 2 * time.Second

type Spec struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env     []string
	Timeout time.Duration
}

func (s Spec) CommandLine() string {
	return strings.Join(append([]string{s.Path}, s.Args...), " ")
}

// Run starts the process, waits for it and returns what it did. A process
// that runs, fails or times out is not an error: that is all in RunData.
// The error is reserved for processes that could not be started and for
// cancellation of ctx; a RunData with ExitCode -1 is returned alongside it
// so the attempt can still be recorded.
func Run(ctx context.Context, spec Spec) (*internal.RunData, error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	data := &internal.RunData{
		Command:  spec.CommandLine(),
		ExitCode: -1,
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		data.Stderr = []byte(err.Error())
		return data, fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}

	waitErr := cmd.Wait()
	data.WallMillis = time.Since(start).Milliseconds()
	data.Stdout = stdout.Bytes()
	data.Stderr = stderr.Bytes()

	if ps := cmd.ProcessState; ps != nil {
		data.CpuMillis = (ps.UserTime() + ps.SystemTime()).Milliseconds()
		data.ExitCode = int64(ps.ExitCode())
		data.ExitSignal = exitSignal(ps)
	}

	if ctx.Err() != nil {
		data.ExitCode = -1
		return data, fmt.Errorf("%s interrupted: %w", spec.Path, ctx.Err())
	}
	if waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		data.TimedOut = true
		data.ExitCode = -1
		return data, nil
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && cmd.ProcessState == nil {
		return data, fmt.Errorf("failed to wait for %s: %w", spec.Path, waitErr)
	}
	return data, nil
}
