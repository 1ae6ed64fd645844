package api

// RunData is one process invocation as reported to consumers. Output may be
// trimmed by streaming sinks.
type RunData struct {
	Command  string `json:"cmd"`
	Stdout   string `json:"out"`
	Stderr   string `json:"err"`
	ExitCode int64  `json:"exit"`

	CpuMillis  int64 `json:"cpu_ms"`
	WallMillis int64 `json:"wall_ms"`

	ExitSignal *int64 `json:"signal"`
	TimedOut   bool   `json:"timed_out"`
}
