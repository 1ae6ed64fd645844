package api

// RunStatus is the overall verdict of a run.
type RunStatus string

const (
	// Clean means at least one case ran and every case passed.
	Clean RunStatus = "clean"
	// Failed means at least one case failed.
	Failed RunStatus = "failed"
	// Degraded means the run had no cases to execute.
	Degraded RunStatus = "degraded"
	// BuildError means the target could not be compiled.
	BuildError RunStatus = "build_error"
	// Interrupted means the run was cancelled before every case finished.
	Interrupted RunStatus = "interrupted"
)

// CaseResult is the outcome of a single case.
type CaseResult struct {
	ID       string `json:"id"`
	Operator string `json:"operator"`
	DType    int    `json:"dtype"`
	VLen     int    `json:"vlen,omitempty"`
	Variant  string `json:"variant,omitempty"`
	PlanRef  string `json:"plan_ref,omitempty"`

	Passed  bool   `json:"passed"`
	Failure string `json:"failure,omitempty"`
	Message string `json:"message,omitempty"`

	Emulator   string `json:"emulator,omitempty"`
	VectorPath string `json:"vector_path,omitempty"`

	// Process details are only kept for failing cases.
	Oracle *RunData `json:"oracle,omitempty"`
	Kernel *RunData `json:"kernel,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}

// CompileResult is the outcome of the target build step.
type CompileResult struct {
	Skipped bool      `json:"skipped"`
	Success bool      `json:"success"`
	Error   *string   `json:"error,omitempty"`
	Steps   []RunData `json:"steps,omitempty"`
}

// RunReport is the complete, non-streaming result of a run.
type RunReport struct {
	RunID    string `json:"run_id"`
	Board    string `json:"board"`
	DType    int    `json:"dtype"`
	Accuracy string `json:"accuracy"`
	PlanID   string `json:"plan_id,omitempty"`

	Status  RunStatus `json:"status"`
	Clean   bool      `json:"clean"`
	Summary string    `json:"summary"`

	Compilation CompileResult `json:"compilation"`

	Total     int      `json:"total"`
	Passed    int      `json:"passed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids"`

	Cases []CaseResult `json:"cases"`

	// DegradedReason is set when the case source could not be resolved.
	DegradedReason *string `json:"degraded_reason,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}
