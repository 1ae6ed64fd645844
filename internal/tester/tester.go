// Package tester drives a validation run: it resolves the cases, builds the
// target, runs each case through the oracle and the kernel and reports every
// step to a ResultGatherer.
package tester

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/environment"
	"github.com/programme-lv/kernval/internal/oracle"
)

type PlanFetcher interface {
	Fetch(ctx context.Context, planID string) ([]internal.TestCase, error)
}

type Generator interface {
	Generate(ctx context.Context, tc internal.TestCase) (oracle.Generated, error)
}

type Executor interface {
	Execute(ctx context.Context, tc internal.TestCase, emu internal.EmulatorConfig, vectorPath, accuracy string) (*internal.RunData, bool, error)
}

type Compiler interface {
	Compile(ctx context.Context, board emulator.Board, binaries []string) ([]*internal.RunData, error)
}

// Cleaner removes leftovers from the shared working directory.
type Cleaner interface {
	Clean(pattern string) (int, error)
}

// Deps are the collaborators of a Tester. Plan may be nil when no plan id is
// configured, Builder may be nil when the build step is skipped and Work may
// be nil to keep old vector files around.
type Deps struct {
	Catalog *catalog.Catalog
	Plan    PlanFetcher
	Oracle  Generator
	Kernel  Executor
	Builder Compiler
	Work    Cleaner
	Logger  *slog.Logger
}

type Tester struct {
	cfg      environment.RunConfig
	deps     Deps
	board    emulator.Board
	resolver *emulator.Resolver
	logger   *slog.Logger
}

// New checks the board and case filters against the catalog so that a
// misconfigured run fails before anything is reported.
func New(cfg environment.RunConfig, deps Deps) (*Tester, error) {
	if deps.Catalog == nil || deps.Oracle == nil || deps.Kernel == nil {
		return nil, fmt.Errorf("tester needs a catalog, an oracle and a kernel invoker")
	}
	if cfg.PlanID != "" && deps.Plan == nil {
		return nil, fmt.Errorf("plan %s requested without a plan source", cfg.PlanID)
	}
	if !cfg.SkipBuild && deps.Builder == nil {
		return nil, fmt.Errorf("no builder configured and the build step is not skipped")
	}
	resolver := deps.Catalog.Resolver()
	board, err := resolver.Board(cfg.Board)
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Only {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid case filter %q: %w", p, err)
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tester{
		cfg:      cfg,
		deps:     deps,
		board:    board,
		resolver: resolver,
		logger:   logger,
	}, nil
}

func (t *Tester) Board() emulator.Board {
	return t.board
}
