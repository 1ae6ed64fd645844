// Package oracle runs the reference generator scripts that produce test
// vectors.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/runner"
	"github.com/programme-lv/kernval/internal/vectorcodec"
	"github.com/programme-lv/kernval/internal/workdir"
)

var (
	// ErrOracleFailed is returned when the script exits nonzero or times out.
	ErrOracleFailed = errors.New("oracle failed")
	// ErrNoVector is returned when the script succeeded without writing its
	// vector file.
	ErrNoVector = errors.New("oracle produced no vector file")
)

type Invoker struct {
	// Interpreter runs the scripts, e.g. "python3".
	Interpreter string
	// Dir is the root the catalog's script paths are relative to.
	Dir     string
	Work    *workdir.Dir
	Catalog *catalog.Catalog
	Timeout time.Duration
	Logger  *slog.Logger
}

type Generated struct {
	Path string
	Run  *internal.RunData
}

// Command builds the script invocation for tc. The case's vlen must already
// be resolved for scripts that take one.
func (i *Invoker) Command(op catalog.Operator, tc internal.TestCase) (runner.Spec, error) {
	script := op.Script
	if !filepath.IsAbs(script) {
		// the script runs from the work dir, so a relative root would
		// resolve against the wrong directory
		dir, err := filepath.Abs(i.Dir)
		if err != nil {
			return runner.Spec{}, fmt.Errorf("failed to resolve oracle dir %s: %w", i.Dir, err)
		}
		script = filepath.Join(dir, script)
	}

	args := []string{script}
	switch op.Args {
	case catalog.ArgsNone:
	case catalog.ArgsDTypeVLenVariant:
		if !tc.VLen.IsSet() {
			return runner.Spec{}, fmt.Errorf("oracle for %s needs a vlen", tc.ID)
		}
		args = append(args, tc.DType.String(), tc.VLen.String(), tc.Variant)
	case catalog.ArgsVariant:
		args = append(args, tc.Variant)
	case catalog.ArgsOperator:
		args = append(args, op.Name)
	case catalog.ArgsDriver:
		code, err := driverCode(op, script)
		if err != nil {
			return runner.Spec{}, err
		}
		args = []string{"-c", code}
	default:
		return runner.Spec{}, fmt.Errorf("operator %s: unsupported oracle arguments %s", op.Name, op.Args)
	}

	return runner.Spec{
		Path:    i.Interpreter,
		Args:    args,
		Dir:     i.Work.Path(),
		Timeout: i.Timeout,
	}, nil
}

// driverCode imports script from its own directory and calls
//
//	<module>.<function>(("<name>", <params>))
//
// with params decoded from JSON.
func driverCode(op catalog.Operator, script string) (string, error) {
	params := op.Params
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("operator %s: failed to encode params: %w", op.Name, err)
	}
	module := op.DriverModule()
	return fmt.Sprintf("import json, sys; sys.path.insert(0, %s); import %s; %s.%s((%s, json.loads(%s)))",
		strconv.Quote(filepath.Dir(script)),
		module, module, op.DriverFunction(),
		strconv.Quote(op.Name), strconv.Quote(string(encoded)),
	), nil
}

// Generate runs the oracle for tc in the shared working directory and checks
// that it left a well-formed vector file behind. Any earlier file of the same
// name is removed first.
func (i *Invoker) Generate(ctx context.Context, tc internal.TestCase) (Generated, error) {
	op, err := i.Catalog.Lookup(tc.Operator)
	if err != nil {
		return Generated{}, err
	}
	spec, err := i.Command(op, tc)
	if err != nil {
		return Generated{}, err
	}

	name := op.VectorFile()
	out := Generated{Path: i.Work.Join(name)}
	if err := i.Work.Remove(name); err != nil {
		return out, fmt.Errorf("failed to clear stale vector: %w", err)
	}

	i.logger().Debug("running oracle", "case", tc.ID, "cmd", spec.CommandLine())
	out.Run, err = runner.Run(ctx, spec)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrOracleFailed, err)
	}
	switch {
	case out.Run.TimedOut:
		return out, fmt.Errorf("%w: timed out after %s", ErrOracleFailed, i.Timeout)
	case out.Run.ExitCode != 0:
		return out, fmt.Errorf("%w: exit code %d", ErrOracleFailed, out.Run.ExitCode)
	}

	if !i.Work.HasFile(name) {
		return out, fmt.Errorf("%w: %s", ErrNoVector, name)
	}
	if err := vectorcodec.ValidateFile(out.Path); err != nil {
		return out, err
	}
	return out, nil
}

func (i *Invoker) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}
