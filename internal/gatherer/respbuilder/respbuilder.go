package respbuilder

import (
	"time"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/gatherer"
)

// Builder gathers run events and builds a complete api.RunReport.
type Builder struct {
	runID string
	info  internal.RunInfo

	started  time.Time
	finished *time.Time

	compileResult api.CompileResult
	cases         []api.CaseResult
	tally         gatherer.Tally
}

var _ internal.ResultGatherer = (*Builder)(nil)

func New(runID string) *Builder {
	return &Builder{
		runID:         runID,
		started:       time.Now(),
		compileResult: api.CompileResult{Skipped: true, Success: true},
		cases:         []api.CaseResult{},
	}
}

// StartRun implements ResultGatherer.
func (b *Builder) StartRun(info internal.RunInfo) {
	b.info = info
	b.tally.Start(info)
}

// StartCompile implements ResultGatherer.
func (b *Builder) StartCompile() {
	b.compileResult.Skipped = false
}

// FinishCompile implements ResultGatherer.
func (b *Builder) FinishCompile(data []*internal.RunData) {
	b.compileResult.Steps = gatherer.ToSteps(data, false)
}

// CompileError implements ResultGatherer.
func (b *Builder) CompileError(msg string) {
	b.compileResult.Success = false
	b.compileResult.Error = &msg
	b.tally.CompileError = &msg
}

// ReachCase implements ResultGatherer.
func (b *Builder) ReachCase(c internal.TestCase) {}

// FinishCase implements ResultGatherer.
func (b *Builder) FinishCase(res internal.ExecutionResult) {
	b.tally.Add(res)
	b.cases = append(b.cases, gatherer.ToCaseResult(res, false))
}

// Degraded implements ResultGatherer.
func (b *Builder) Degraded(msg string) {
	b.tally.Degraded = &msg
}

// FinishRun implements ResultGatherer.
func (b *Builder) FinishRun() {
	now := time.Now()
	b.finished = &now
}

// Status is the run verdict so far.
func (b *Builder) Status() api.RunStatus {
	return b.tally.Status()
}

// Report builds the api.RunReport from gathered data.
func (b *Builder) Report() api.RunReport {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}

	failedIDs := append([]string{}, b.tally.FailedIDs...)
	status := b.tally.Status()
	return api.RunReport{
		RunID:          b.runID,
		Board:          b.info.Board,
		DType:          int(b.info.DType),
		Accuracy:       b.info.Accuracy,
		PlanID:         b.info.PlanID,
		Status:         status,
		Clean:          status == api.Clean,
		Summary:        b.tally.Summary(),
		Compilation:    b.compileResult,
		Total:          b.tally.Total,
		Passed:         b.tally.Passed,
		Failed:         b.tally.Failed,
		FailedIDs:      failedIDs,
		Cases:          append([]api.CaseResult{}, b.cases...),
		DegradedReason: b.tally.Degraded,
		StartTime:      start,
		FinishTime:     finish,
		TotalTimeMs:    total,
	}
}
