package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DType is the element bit-width a kernel is built for.
type DType int

const (
	DTypeInt8 DType = 8
	DTypeFP16 DType = 16
	DTypeFP32 DType = 32
)

func ParseDType(s string) (DType, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid dtype %q: %w", s, err)
	}
	d := DType(n)
	if !d.Valid() {
		return 0, fmt.Errorf("invalid dtype %q: must be one of 8, 16, 32", s)
	}
	return d, nil
}

func (d DType) Valid() bool {
	return d == DTypeInt8 || d == DTypeFP16 || d == DTypeFP32
}

// Suffix is the kernel binary suffix for the dtype.
func (d DType) Suffix() string {
	switch d {
	case DTypeInt8:
		return "int8"
	case DTypeFP16:
		return "fp16"
	case DTypeFP32:
		return "fp32"
	}
	return "dt" + strconv.Itoa(int(d))
}

func (d DType) String() string { return strconv.Itoa(int(d)) }

// VLen is a vector register width in bits. Zero means the case has no
// vector-length axis.
type VLen int

const (
	VLenNone VLen = 0
	VLen128  VLen = 128
	VLen256  VLen = 256
	VLen512  VLen = 512
)

func ParseVLen(s string) (VLen, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return VLenNone, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid vlen %q: %w", s, err)
	}
	v := VLen(n)
	if v != VLen128 && v != VLen256 && v != VLen512 {
		return 0, fmt.Errorf("invalid vlen %q: must be one of 128, 256, 512", s)
	}
	return v, nil
}

func (v VLen) IsSet() bool { return v != VLenNone }

func (v VLen) String() string {
	if v == VLenNone {
		return "none"
	}
	return strconv.Itoa(int(v))
}

// TestCase is one point of the test matrix.
type TestCase struct {
	Operator string `json:"operator"`
	DType    DType  `json:"dtype"`
	VLen     VLen   `json:"vlen,omitempty"`
	Variant  string `json:"variant,omitempty"`
	ID       string `json:"id"`

	// PlanRef is the plan entry id when the case came from a remote plan.
	PlanRef string `json:"plan_ref,omitempty"`
}

// NewTestCase builds a case and derives its id.
func NewTestCase(operator string, dtype DType, vlen VLen, variant string) TestCase {
	return TestCase{
		Operator: operator,
		DType:    dtype,
		VLen:     vlen,
		Variant:  variant,
		ID:       CaseID(operator, vlen, variant),
	}
}

// CaseID formats "<operator>-<vlen>-<variant>", dropping the parts that are
// absent.
func CaseID(operator string, vlen VLen, variant string) string {
	parts := []string{operator}
	if vlen.IsSet() {
		parts = append(parts, vlen.String())
	}
	if variant != "" {
		parts = append(parts, variant)
	}
	return strings.Join(parts, "-")
}

// EmulatorConfig is a fully resolved emulator invocation for one case.
type EmulatorConfig struct {
	Board       string            `json:"board"`
	BaseCommand string            `json:"base_command"`
	CPUModel    string            `json:"cpu_model,omitempty"`
	CPUFlags    map[string]string `json:"cpu_flags,omitempty"`
	VLen        VLen              `json:"vlen,omitempty"`
}

// Native reports whether binaries run directly on the host.
func (c EmulatorConfig) Native() bool { return c.BaseCommand == "" }

// RunData describes one finished process invocation.
type RunData struct {
	Command  string `json:"command"`
	Stdout   []byte `json:"stdout"`
	Stderr   []byte `json:"stderr"`
	ExitCode int64  `json:"exit_code"`

	ExitSignal *int64 `json:"exit_signal,omitempty"`
	TimedOut   bool   `json:"timed_out"`

	WallMillis int64 `json:"wall_ms"`
	CpuMillis  int64 `json:"cpu_ms"`
}

// Ok is true for a zero exit that did not time out.
func (d *RunData) Ok() bool {
	return d != nil && d.ExitCode == 0 && !d.TimedOut
}

type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureEmulator  FailureKind = "emulator_config"
	FailureOracle    FailureKind = "oracle"
	FailureVector    FailureKind = "vector"
	FailureKernel    FailureKind = "kernel"
	FailureCancelled FailureKind = "cancelled"
)

// ExecutionResult is the immutable outcome of a single case.
type ExecutionResult struct {
	Case       TestCase      `json:"case"`
	Emulator   string        `json:"emulator,omitempty"`
	VectorPath string        `json:"vector_path,omitempty"`
	Oracle     *RunData      `json:"oracle,omitempty"`
	Kernel     *RunData      `json:"kernel,omitempty"`
	Passed     bool          `json:"passed"`
	Failure    FailureKind   `json:"failure,omitempty"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`
}
