package gatherer

import "github.com/programme-lv/kernval/internal"

// Fanout forwards every event to each sink in order.
type Fanout []internal.ResultGatherer

var _ internal.ResultGatherer = Fanout(nil)

func (f Fanout) StartRun(info internal.RunInfo) {
	for _, g := range f {
		g.StartRun(info)
	}
}

func (f Fanout) StartCompile() {
	for _, g := range f {
		g.StartCompile()
	}
}

func (f Fanout) FinishCompile(data []*internal.RunData) {
	for _, g := range f {
		g.FinishCompile(data)
	}
}

func (f Fanout) CompileError(msg string) {
	for _, g := range f {
		g.CompileError(msg)
	}
}

func (f Fanout) ReachCase(c internal.TestCase) {
	for _, g := range f {
		g.ReachCase(c)
	}
}

func (f Fanout) FinishCase(res internal.ExecutionResult) {
	for _, g := range f {
		g.FinishCase(res)
	}
}

func (f Fanout) Degraded(msg string) {
	for _, g := range f {
		g.Degraded(msg)
	}
}

func (f Fanout) FinishRun() {
	for _, g := range f {
		g.FinishRun()
	}
}
