// Package termgath prints run progress for a human at a terminal.
package termgath

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/gatherer"
)

var (
	passTag  = color.New(color.FgGreen, color.Bold).SprintFunc()
	failTag  = color.New(color.FgRed, color.Bold).SprintFunc()
	heading  = color.New(color.FgCyan, color.Bold).SprintfFunc()
	warning  = color.New(color.FgYellow).SprintfFunc()
	errorMsg = color.New(color.FgRed).SprintfFunc()
	faint    = color.New(color.Faint).SprintfFunc()
)

type TerminalGatherer struct {
	w         io.Writer
	verbose   bool
	startedAt time.Time
	tally     gatherer.Tally
	index     int
}

var _ internal.ResultGatherer = (*TerminalGatherer)(nil)

// New prints to stdout. With verbose set, the output of passing cases is
// shown too.
func New(verbose bool) *TerminalGatherer {
	return NewWriter(os.Stdout, verbose)
}

func NewWriter(w io.Writer, verbose bool) *TerminalGatherer {
	return &TerminalGatherer{w: w, verbose: verbose, startedAt: time.Now()}
}

func (t *TerminalGatherer) StartRun(info internal.RunInfo) {
	t.tally.Start(info)
	fmt.Fprintln(t.w, heading("== Run %s started ==", info.RunID))
	fmt.Fprintf(t.w, "board=%s dtype=%s accuracy=%s cases=%d\n", info.Board, info.DType, info.Accuracy, info.Cases)
	if info.PlanID != "" {
		fmt.Fprintf(t.w, "plan=%s\n", info.PlanID)
	}
}

func (t *TerminalGatherer) StartCompile() {
	fmt.Fprintln(t.w, heading("-- Compilation started --"))
}

func (t *TerminalGatherer) FinishCompile(data []*internal.RunData) {
	fmt.Fprintln(t.w, heading("-- Compilation finished --"))
	for _, d := range data {
		fmt.Fprintf(t.w, "%s exit=%d wall=%dms\n", d.Command, d.ExitCode, d.WallMillis)
		if !d.Ok() && len(d.Stderr) > 0 {
			fmt.Fprintf(t.w, "stderr:\n%s\n", gatherer.TrimStrToRect(string(d.Stderr), 40, 160))
		}
	}
}

func (t *TerminalGatherer) CompileError(msg string) {
	t.tally.CompileError = &msg
	fmt.Fprintln(t.w, errorMsg("== Compilation error: %s ==", msg))
}

func (t *TerminalGatherer) ReachCase(c internal.TestCase) {
	t.index++
	fmt.Fprintf(t.w, "-> [%d/%d] %s\n", t.index, t.tally.Planned, c.ID)
}

func (t *TerminalGatherer) FinishCase(res internal.ExecutionResult) {
	t.tally.Add(res)
	tag := passTag("PASS")
	if !res.Passed {
		tag = failTag("FAIL")
	}
	fmt.Fprintf(t.w, "<- %s %s %s\n", tag, res.Case.ID, faint("(%s)", res.Duration.Round(time.Millisecond)))
	if res.Passed && !t.verbose {
		return
	}
	if res.Message != "" {
		fmt.Fprintf(t.w, "   %s: %s\n", res.Failure, res.Message)
	}
	t.printRun("oracle", res.Oracle)
	t.printRun("kernel", res.Kernel)
}

func (t *TerminalGatherer) printRun(name string, d *internal.RunData) {
	if d == nil {
		return
	}
	fmt.Fprintf(t.w, "   %s: %s\n", name, d.Command)
	state := fmt.Sprintf("exit=%d", d.ExitCode)
	if d.TimedOut {
		state = "timed out"
	}
	fmt.Fprintf(t.w, "   %s: %s wall=%dms\n", name, state, d.WallMillis)
	for _, stream := range []struct {
		label string
		b     []byte
	}{{"stdout", d.Stdout}, {"stderr", d.Stderr}} {
		if len(stream.b) == 0 {
			continue
		}
		text := gatherer.TrimStrToRect(strings.TrimRight(string(stream.b), "\n"), 20, 160)
		fmt.Fprintf(t.w, "   %s %s:\n%s\n", name, stream.label, indent(text, "     "))
	}
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func (t *TerminalGatherer) Degraded(msg string) {
	t.tally.Degraded = &msg
	fmt.Fprintln(t.w, warning("== Degraded: %s ==", msg))
}

func (t *TerminalGatherer) FinishRun() {
	dur := time.Since(t.startedAt).Round(time.Millisecond)
	if len(t.tally.FailedIDs) > 0 {
		fmt.Fprintln(t.w, errorMsg("Failed cases:"))
		for _, id := range t.tally.FailedIDs {
			fmt.Fprintf(t.w, "  %s\n", id)
		}
	}
	fmt.Fprintln(t.w, heading("== %s (in %s) ==", t.tally.Summary(), dur))
}
