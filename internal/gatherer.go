package internal

// RunInfo identifies a run for result sinks.
type RunInfo struct {
	RunID    string `json:"run_id"`
	Board    string `json:"board"`
	DType    DType  `json:"dtype"`
	Accuracy string `json:"accuracy"`
	PlanID   string `json:"plan_id,omitempty"`
	Cases    int    `json:"cases"`
}

type ResultGatherer interface {
	StartRun(info RunInfo)

	StartCompile()
	FinishCompile(data []*RunData)
	CompileError(msg string)

	ReachCase(c TestCase)
	FinishCase(res ExecutionResult)

	// Degraded reports a run that could not produce any cases.
	Degraded(msg string)
	FinishRun()
}
