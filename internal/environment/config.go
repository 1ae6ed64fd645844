// Package environment assembles the run configuration every component is
// constructed from.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/xdg"
)

const (
	DefaultOracleTimeout = 100 * time.Second
	DefaultKernelTimeout = 300 * time.Second
	DefaultBuildTimeout  = 600 * time.Second
	DefaultPlanTimeout   = 30 * time.Second

	DefaultInterpreter = "python3"
	DefaultAccuracy    = "0.99"

	// VLenEnv names the variable that overrides the default vector length.
	VLenEnv     = "vlen"
	defaultVLen = "128"
)

// RunConfig is built once at startup and handed to every constructor.
type RunConfig struct {
	RunID    string
	Board    string
	DType    internal.DType
	VLen     internal.VLen
	Accuracy string

	PlanID       string
	PlanEndpoint string
	PlanTimeout  time.Duration
	// Only restricts the matrix to case ids or operators matching these globs.
	Only []string

	SrcDir      string
	OracleDir   string
	KernelDir   string
	WorkDir     string
	Interpreter string
	CatalogFile string

	OracleTimeout time.Duration
	KernelTimeout time.Duration
	BuildTimeout  time.Duration
	BuildJobs     int
	SkipBuild     bool

	ReportPath  string
	NatsURL     string
	NatsSubject string
	SQSQueueURL string
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DefaultVLen reads the vlen variable, defaulting to 128.
func DefaultVLen() (internal.VLen, error) {
	s, ok := os.LookupEnv(VLenEnv)
	if !ok || strings.TrimSpace(s) == "" {
		s = defaultVLen
	}
	v, err := internal.ParseVLen(s)
	if err != nil {
		return internal.VLenNone, fmt.Errorf("%s: %w", VLenEnv, err)
	}
	return v, nil
}

// Finalize fills in everything derivable from the fields already set.
func (c *RunConfig) Finalize() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.Accuracy == "" {
		c.Accuracy = DefaultAccuracy
	}
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
	}
	if c.SrcDir == "" {
		c.SrcDir = "."
	}
	c.SrcDir = absPath(c.SrcDir)
	if c.OracleDir == "" {
		c.OracleDir = filepath.Join(c.SrcDir, "tests")
	}
	if c.KernelDir == "" && c.Board != "" {
		c.KernelDir = filepath.Join(c.SrcDir, "tests", "validation_"+c.Board)
	}
	if c.WorkDir == "" && c.Board != "" {
		c.WorkDir = xdg.NewXDGDirs().WorkDir(c.Board)
	}
	// oracles and kernels run with the work dir as cwd
	c.OracleDir = absPath(c.OracleDir)
	c.KernelDir = absPath(c.KernelDir)
	c.WorkDir = absPath(c.WorkDir)
	if c.OracleTimeout == 0 {
		c.OracleTimeout = DefaultOracleTimeout
	}
	if c.KernelTimeout == 0 {
		c.KernelTimeout = DefaultKernelTimeout
	}
	if c.BuildTimeout == 0 {
		c.BuildTimeout = DefaultBuildTimeout
	}
	if c.PlanTimeout == 0 {
		c.PlanTimeout = DefaultPlanTimeout
	}
	if c.NatsURL != "" && c.NatsSubject == "" {
		c.NatsSubject = "kernval.runs." + c.Board
	}
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Validate checks the fields every run needs. Board names are checked
// against the board table by the caller.
func (c RunConfig) Validate() error {
	var errs []error
	if c.Board == "" {
		errs = append(errs, errors.New("board is required"))
	}
	if !c.DType.Valid() {
		errs = append(errs, fmt.Errorf("dtype %d must be one of 8, 16, 32", c.DType))
	}
	if c.Accuracy == "" || strings.ContainsAny(c.Accuracy, " \t\n") {
		errs = append(errs, fmt.Errorf("accuracy %q must be a single non-empty token", c.Accuracy))
	}
	if c.PlanID != "" && c.PlanEndpoint == "" {
		errs = append(errs, errors.New("a plan id needs a plan endpoint"))
	}
	for name, d := range map[string]time.Duration{
		"oracle timeout": c.OracleTimeout,
		"kernel timeout": c.KernelTimeout,
		"build timeout":  c.BuildTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.BuildJobs < 0 {
		errs = append(errs, fmt.Errorf("build jobs must not be negative, got %d", c.BuildJobs))
	}
	return errors.Join(errs...)
}
