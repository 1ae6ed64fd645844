//go:build unix

package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/kernval/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sh(script string, timeout time.Duration) runner.Spec {
	return runner.Spec{Path: "/bin/sh", Args: []string{"-c", script}, Timeout: timeout}
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	data, err := runner.Run(context.Background(), sh("echo out; echo err >&2; exit 3", 5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(data.Stdout))
	assert.Equal(t, "err\n", string(data.Stderr))
	assert.Equal(t, int64(3), data.ExitCode)
	assert.False(t, data.TimedOut)
	assert.False(t, data.Ok())
	assert.Nil(t, data.ExitSignal)
}

func TestRunSuccess(t *testing.T) {
	data, err := runner.Run(context.Background(), sh("true", 5*time.Second))
	require.NoError(t, err)
	assert.True(t, data.Ok())
	assert.Equal(t, "/bin/sh -c true", data.Command)
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	start := time.Now()
	data, err := runner.Run(context.Background(), sh("sleep 10", 200*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, data.TimedOut)
	assert.Equal(t, int64(-1), data.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunTimeoutKillsGrandchildren(t *testing.T) {
	// the backgrounded sleep inherits stdout; only a group kill lets the
	// pipe close before WaitDelay
	start := time.Now()
	data, err := runner.Run(context.Background(), sh("sleep 10 & wait", 200*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, data.TimedOut)
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestRunMissingBinary(t *testing.T) {
	data, err := runner.Run(context.Background(), runner.Spec{Path: "/nonexistent/kernval-binary"})
	require.Error(t, err)
	require.NotNil(t, data)
	assert.Equal(t, int64(-1), data.ExitCode)
	assert.NotEmpty(t, data.Stderr)
}

func TestRunWorkingDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	spec := sh(`pwd; echo "$KERNVAL_TEST_VAR"`, 5*time.Second)
	spec.Dir = dir
	spec.Env = []string{"KERNVAL_TEST_VAR=vlen-256"}

	data, err := runner.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Contains(t, string(data.Stdout), "vlen-256")
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	data, err := runner.Run(ctx, sh("sleep 10", 0))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(-1), data.ExitCode)
	assert.False(t, data.TimedOut)
}

func TestRunReportsSignal(t *testing.T) {
	data, err := runner.Run(context.Background(), sh("kill -9 $$", 5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, data.ExitSignal)
	assert.Equal(t, int64(9), *data.ExitSignal)
	assert.Equal(t, int64(-1), data.ExitCode)
}
