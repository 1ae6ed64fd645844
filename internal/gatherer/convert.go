package gatherer

import (
	"strings"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
)

// ToRunData converts process data for the wire. With trim set, outputs are
// cut to api.MaxRunDataHeight lines of api.MaxRunDataWidth bytes.
func ToRunData(d *internal.RunData, trim bool) *api.RunData {
	if d == nil {
		return nil
	}
	out, errOut := string(d.Stdout), string(d.Stderr)
	if trim {
		out = TrimStrToRect(out, api.MaxRunDataHeight, api.MaxRunDataWidth)
		errOut = TrimStrToRect(errOut, api.MaxRunDataHeight, api.MaxRunDataWidth)
	}
	return &api.RunData{
		Command:    d.Command,
		Stdout:     out,
		Stderr:     errOut,
		ExitCode:   d.ExitCode,
		CpuMillis:  d.CpuMillis,
		WallMillis: d.WallMillis,
		ExitSignal: d.ExitSignal,
		TimedOut:   d.TimedOut,
	}
}

// ToCaseResult converts a case outcome. Process details are attached only
// to failing cases.
func ToCaseResult(res internal.ExecutionResult, trim bool) api.CaseResult {
	cr := api.CaseResult{
		ID:         res.Case.ID,
		Operator:   res.Case.Operator,
		DType:      int(res.Case.DType),
		VLen:       int(res.Case.VLen),
		Variant:    res.Case.Variant,
		PlanRef:    res.Case.PlanRef,
		Passed:     res.Passed,
		Failure:    string(res.Failure),
		Message:    res.Message,
		Emulator:   res.Emulator,
		VectorPath: res.VectorPath,
		DurationMs: res.Duration.Milliseconds(),
	}
	if !res.Passed {
		cr.Oracle = ToRunData(res.Oracle, trim)
		cr.Kernel = ToRunData(res.Kernel, trim)
	}
	return cr
}

func ToSteps(steps []*internal.RunData, trim bool) []api.RunData {
	out := make([]api.RunData, 0, len(steps))
	for _, s := range steps {
		if s != nil {
			out = append(out, *ToRunData(s, trim))
		}
	}
	return out
}

// TrimStrToRect keeps at most maxHeight lines of at most maxWidth bytes,
// marking every cut with "[...]".
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) > maxWidth {
			b.WriteString(line[:maxWidth])
			b.WriteString("[...]")
		} else {
			b.WriteString(line)
		}
	}
	if cut {
		b.WriteString("\n[...]")
	}
	return b.String()
}
