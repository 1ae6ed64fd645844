package tester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/build"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/gatherer"
	"github.com/programme-lv/kernval/internal/matrix"
	"github.com/programme-lv/kernval/internal/oracle"
	"github.com/programme-lv/kernval/internal/vectorcodec"
)

// vectorPattern matches every vector file an oracle may leave in the working
// directory.
const vectorPattern = "*.bin"

// Outcome is the verdict of a finished run.
type Outcome struct {
	Status  api.RunStatus
	Summary string
	Total   int
	Passed  int
	Failed  int
}

type run struct {
	gath  ResultGatherer
	tally gatherer.Tally
}

func (r *run) outcome() Outcome {
	return Outcome{
		Status:  r.tally.Status(),
		Summary: r.tally.Summary(),
		Total:   r.tally.Total,
		Passed:  r.tally.Passed,
		Failed:  r.tally.Failed,
	}
}

// Run executes one validation run and reports it to gath. It never returns
// early without calling gath.FinishRun.
func (t *Tester) Run(ctx context.Context, gath ResultGatherer) Outcome {
	r := &run{gath: gath}
	defer gath.FinishRun()

	cases, reason := t.cases(ctx)
	info := internal.RunInfo{
		RunID:    t.cfg.RunID,
		Board:    t.board.Name,
		DType:    t.cfg.DType,
		Accuracy: t.cfg.Accuracy,
		PlanID:   t.cfg.PlanID,
		Cases:    len(cases),
	}
	t.logger.Info("starting run", "run", info.RunID, "board", info.Board, "dtype", info.DType, "cases", info.Cases)
	gath.StartRun(info)
	r.tally.Start(info)

	if len(cases) == 0 {
		if reason == "" {
			reason = "no cases to run"
		}
		t.logger.Warn("run degraded", "reason", reason)
		gath.Degraded(reason)
		r.tally.Degraded = &reason
		return r.outcome()
	}

	if !t.compile(ctx, r, cases) {
		return r.outcome()
	}
	t.cleanWork()

	for _, tc := range cases {
		if ctx.Err() != nil {
			t.logger.Warn("run interrupted", "remaining", len(cases)-r.tally.Total)
			r.tally.Cancelled = true
			break
		}
		gath.ReachCase(tc)
		res := t.runCase(ctx, tc)
		gath.FinishCase(res)
		r.tally.Add(res)

		log := t.logger.With("case", tc.ID, "duration", res.Duration.Round(time.Millisecond))
		if res.Passed {
			log.Info("case passed")
		} else {
			log.Warn("case failed", "failure", res.Failure, "msg", res.Message)
		}
		if res.Failure == internal.FailureCancelled {
			break
		}
	}

	out := r.outcome()
	t.logger.Info("run finished", "summary", out.Summary)
	return out
}

// cases returns the cases of the run. A plan replaces the matrix entirely and
// is not filtered. An empty list comes with the reason the case source could
// not be resolved, if any.
func (t *Tester) cases(ctx context.Context) ([]internal.TestCase, string) {
	if t.cfg.PlanID != "" {
		cases, err := t.deps.Plan.Fetch(ctx, t.cfg.PlanID)
		if err != nil {
			t.logger.Error("failed to fetch test plan", "plan", t.cfg.PlanID, "err", err)
			return nil, err.Error()
		}
		return cases, ""
	}
	cases, err := matrix.Build(t.deps.Catalog, t.board, t.cfg.DType)
	if err != nil {
		t.logger.Error("failed to build case matrix", "err", err)
		return nil, err.Error()
	}
	return t.filter(cases)
}

func (t *Tester) filter(cases []internal.TestCase) ([]internal.TestCase, string) {
	if len(t.cfg.Only) == 0 {
		return cases, ""
	}
	out, err := matrix.Filter(cases, t.cfg.Only)
	if err != nil {
		return nil, err.Error()
	}
	return out, ""
}

// compile builds the binaries the cases need. It reports false when the run
// must stop.
func (t *Tester) compile(ctx context.Context, r *run, cases []internal.TestCase) bool {
	if t.cfg.SkipBuild {
		t.logger.Info("skipping build")
		return true
	}
	targets, err := build.Targets(t.deps.Catalog, cases)
	if err != nil {
		r.compileError(fmt.Sprintf("failed to list build targets: %v", err))
		return false
	}

	r.gath.StartCompile()
	start := time.Now()
	steps, err := t.deps.Builder.Compile(ctx, t.board, targets)
	r.gath.FinishCompile(steps)
	if err == nil {
		t.logger.Info("build finished", "targets", len(targets), "steps", len(steps), "took", time.Since(start).Round(time.Millisecond))
		return true
	}
	if ctx.Err() != nil {
		t.logger.Warn("build interrupted", "err", err)
		r.tally.Cancelled = true
		return false
	}
	t.logger.Error("build failed", "err", err)
	r.compileError(err.Error())
	return false
}

func (r *run) compileError(msg string) {
	r.gath.CompileError(msg)
	r.tally.CompileError = &msg
}

func (t *Tester) cleanWork() {
	if t.deps.Work == nil {
		return
	}
	n, err := t.deps.Work.Clean(vectorPattern)
	if err != nil {
		t.logger.Warn("failed to clean working directory", "err", err)
		return
	}
	if n > 0 {
		t.logger.Debug("removed stale vector files", "count", n)
	}
}

// runCase resolves the emulator, generates the vector and runs the kernel.
// Every failure is captured in the result.
func (t *Tester) runCase(ctx context.Context, tc internal.TestCase) internal.ExecutionResult {
	start := time.Now()
	res := internal.ExecutionResult{Case: tc}
	finish := func(kind internal.FailureKind, err error) internal.ExecutionResult {
		if ctx.Err() != nil {
			kind = internal.FailureCancelled
		}
		res.Failure = kind
		res.Message = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	resolved := tc
	if !resolved.VLen.IsSet() {
		resolved.VLen = t.board.PickVLen(tc.VLen, t.cfg.VLen)
	}
	emu, err := t.resolver.Resolve(t.board.Name, resolved.VLen)
	if err != nil {
		return finish(internal.FailureEmulator, err)
	}
	// fixed-width boards pick their own vlen
	if !resolved.VLen.IsSet() {
		resolved.VLen = emu.VLen
	}
	res.Emulator = emulator.CommandLine(emu)

	gen, err := t.deps.Oracle.Generate(ctx, resolved)
	res.VectorPath = gen.Path
	res.Oracle = gen.Run
	if err != nil {
		kind := internal.FailureOracle
		if errors.Is(err, oracle.ErrNoVector) || errors.Is(err, vectorcodec.ErrMalformedVector) {
			kind = internal.FailureVector
		}
		return finish(kind, err)
	}

	data, passed, err := t.deps.Kernel.Execute(ctx, resolved, emu, gen.Path, t.cfg.Accuracy)
	res.Kernel = data
	if err != nil {
		return finish(internal.FailureKernel, err)
	}
	if !passed {
		return finish(internal.FailureKernel, errors.New(kernelMessage(data)))
	}
	res.Passed = true
	res.Duration = time.Since(start)
	return res
}

func kernelMessage(d *internal.RunData) string {
	switch {
	case d == nil:
		return "kernel did not run"
	case d.TimedOut:
		return "kernel timed out"
	case d.ExitSignal != nil:
		return fmt.Sprintf("kernel killed by signal %d", *d.ExitSignal)
	default:
		return fmt.Sprintf("kernel exited with code %d", d.ExitCode)
	}
}
