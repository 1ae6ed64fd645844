// Package kernel runs cross-compiled kernel binaries under their emulator.
package kernel

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/runner"
	"github.com/programme-lv/kernval/internal/workdir"
)

type Invoker struct {
	// Dir holds the built kernel binaries.
	Dir     string
	Work    *workdir.Dir
	Catalog *catalog.Catalog
	Timeout time.Duration
	Logger  *slog.Logger
}

// Command builds
//
//	<emulator> <dir>/<binary>_<dtype>.elf <vector> <accuracy>
//
// A relative Dir is resolved against the current directory since the
// binary runs from the work dir. The accuracy string is passed through
// untouched.
func (i *Invoker) Command(op catalog.Operator, tc internal.TestCase, emu internal.EmulatorConfig, vectorPath, accuracy string) runner.Spec {
	dir := i.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	binary := filepath.Join(dir, op.BinaryName(tc.DType))
	argv := append(emulator.Argv(emu), binary, vectorPath, accuracy)
	spec := runner.Spec{
		Path:    argv[0],
		Args:    argv[1:],
		Timeout: i.Timeout,
	}
	if i.Work != nil {
		spec.Dir = i.Work.Path()
	}
	return spec
}

// Execute runs the kernel binary for tc against the vector file. The kernel
// compares its own output against the reference; it passed iff it exited 0
// within the timeout. The error is only set when the binary could not be
// started or ctx was cancelled, and RunData is always returned.
func (i *Invoker) Execute(ctx context.Context, tc internal.TestCase, emu internal.EmulatorConfig, vectorPath, accuracy string) (*internal.RunData, bool, error) {
	op, err := i.Catalog.Lookup(tc.Operator)
	if err != nil {
		return &internal.RunData{ExitCode: -1, Stderr: []byte(err.Error())}, false, err
	}
	spec := i.Command(op, tc, emu, vectorPath, accuracy)

	i.logger().Debug("running kernel", "case", tc.ID, "cmd", spec.CommandLine())
	data, err := runner.Run(ctx, spec)
	return data, err == nil && data.Ok(), err
}

func (i *Invoker) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}
