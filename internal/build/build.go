// Package build compiles the kernel library and test binaries for a board
// before any case runs.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/runner"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

var ErrBuildFailed = errors.New("build failed")

type Builder struct {
	// SrcDir is the kernel source tree with the top-level Makefile.
	SrcDir  string
	Make    string
	Jobs    int
	Timeout time.Duration
	Logger  *slog.Logger

	// built records successful make targets for the life of the process.
	built *xsync.MapOf[string, *internal.RunData]
}

func NewBuilder(srcDir string, jobs int, timeout time.Duration, logger *slog.Logger) *Builder {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		SrcDir:  srcDir,
		Make:    "make",
		Jobs:    jobs,
		Timeout: timeout,
		Logger:  logger,
		built:   xsync.NewMapOf[string, *internal.RunData](),
	}
}

// BinaryDir is where the board's test binaries are built.
func (b *Builder) BinaryDir(board string) string {
	return filepath.Join(b.SrcDir, "tests", "validation_"+board)
}

// Targets lists the distinct kernel binaries the cases need, in first-use
// order.
func Targets(cat *catalog.Catalog, cases []internal.TestCase) ([]string, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []string
	for _, tc := range cases {
		op, err := cat.Lookup(tc.Operator)
		if err != nil {
			return nil, err
		}
		if name := op.BinaryName(tc.DType); seen.Add(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Compile builds the board library, then every binary concurrently. Targets
// built earlier by this Builder are skipped. Any failing step stops the
// build with ErrBuildFailed; the returned steps include the failure.
func (b *Builder) Compile(ctx context.Context, board emulator.Board, binaries []string) ([]*internal.RunData, error) {
	var steps []*internal.RunData

	if board.LibraryTarget != "" {
		data, err := b.make(ctx, board.Name, b.SrcDir, board.LibraryTarget)
		if data != nil {
			steps = append(steps, data)
		}
		if err != nil {
			return steps, err
		}
	}

	results := make([]*internal.RunData, len(binaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Jobs)
	dir := b.BinaryDir(board.Name)
	for i, bin := range binaries {
		g.Go(func() error {
			data, err := b.make(gctx, board.Name, dir, bin)
			results[i] = data
			return err
		})
	}
	err := g.Wait()

	for _, r := range results {
		if r != nil {
			steps = append(steps, r)
		}
	}
	return steps, err
}

// make runs one target unless it is already built. It returns nil data for
// skipped targets.
func (b *Builder) make(ctx context.Context, board, dir, target string) (*internal.RunData, error) {
	key := board + ":" + dir + ":" + target
	if _, ok := b.built.Load(key); ok {
		b.Logger.Debug("target already built", "board", board, "target", target)
		return nil, nil
	}

	b.Logger.Info("building", "board", board, "target", target)
	data, err := runner.Run(ctx, runner.Spec{
		Path:    b.Make,
		Args:    []string{"-C", dir, target},
		Timeout: b.Timeout,
	})
	if err != nil {
		return data, fmt.Errorf("%w: %s: %w", ErrBuildFailed, target, err)
	}
	if data.TimedOut {
		return data, fmt.Errorf("%w: %s timed out after %s", ErrBuildFailed, target, b.Timeout)
	}
	if data.ExitCode != 0 {
		return data, fmt.Errorf("%w: %s exited with %d", ErrBuildFailed, target, data.ExitCode)
	}
	b.built.Store(key, data)
	return data, nil
}
