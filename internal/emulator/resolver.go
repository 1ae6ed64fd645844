// Package emulator maps target boards to concrete emulator invocations.
package emulator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/programme-lv/kernval/internal"
)

var (
	ErrUnknownBoard             = errors.New("unknown board")
	ErrUnsupportedConfiguration = errors.New("unsupported emulator configuration")
)

// Resolver is a read-only board table. Resolve has no side effects, so one
// resolver is shared by every case of a run.
type Resolver struct {
	boards map[string]Board
}

// NewResolver builds a table from boards; later entries replace earlier ones
// with the same name.
func NewResolver(boards ...Board) *Resolver {
	r := &Resolver{boards: make(map[string]Board, len(boards))}
	for _, b := range boards {
		r.boards[b.Name] = b
	}
	return r
}

func DefaultResolver() *Resolver {
	return NewResolver(DefaultBoards()...)
}

func (r *Resolver) Board(name string) (Board, error) {
	b, ok := r.boards[name]
	if !ok {
		return Board{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBoard, name, strings.Join(r.Names(), ", "))
	}
	return b, nil
}

// Names returns board names sorted alphabetically.
func (r *Resolver) Names() []string {
	return slices.Sorted(maps.Keys(r.boards))
}

func (r *Resolver) Boards() []Board {
	out := make([]Board, 0, len(r.boards))
	for _, name := range r.Names() {
		out = append(out, r.boards[name])
	}
	return out
}

func (r *Resolver) Resolve(board string, vlen internal.VLen) (internal.EmulatorConfig, error) {
	b, err := r.Board(board)
	if err != nil {
		return internal.EmulatorConfig{}, err
	}

	flags := maps.Clone(b.Flags)
	if flags == nil {
		flags = map[string]string{}
	}
	cfg := internal.EmulatorConfig{
		Board:       b.Name,
		BaseCommand: b.BaseCommand,
		CPUModel:    b.CPUModel,
		CPUFlags:    flags,
	}

	switch b.Vector {
	case NoVector:
		if vlen.IsSet() {
			return internal.EmulatorConfig{}, fmt.Errorf("%w: board %s has no vector unit, got vlen %s",
				ErrUnsupportedConfiguration, b.Name, vlen)
		}
	case FixedVector:
		if !vlen.IsSet() {
			vlen = b.DefaultVLen
		}
		if !b.SupportsVLen(vlen) {
			return internal.EmulatorConfig{}, fmt.Errorf("%w: board %s has a fixed vlen of %s, got %s",
				ErrUnsupportedConfiguration, b.Name, b.DefaultVLen, vlen)
		}
		cfg.VLen = vlen
	case ParamVector:
		if !vlen.IsSet() {
			vlen = b.DefaultVLen
		}
		if !b.SupportsVLen(vlen) {
			return internal.EmulatorConfig{}, fmt.Errorf("%w: board %s supports vlen %s, got %s",
				ErrUnsupportedConfiguration, b.Name, joinVLens(b.VLens), vlen)
		}
		if b.VLenFlag == "" {
			return internal.EmulatorConfig{}, fmt.Errorf("%w: board %s has no vlen flag",
				ErrUnsupportedConfiguration, b.Name)
		}
		cfg.CPUFlags[b.VLenFlag] = vlen.String()
		cfg.VLen = vlen
	default:
		return internal.EmulatorConfig{}, fmt.Errorf("%w: board %s has an invalid vector unit %d",
			ErrUnsupportedConfiguration, b.Name, b.Vector)
	}

	return cfg, nil
}

// Argv renders the emulator prefix of a command line, e.g.
// ["qemu-riscv64", "-cpu", "rv64,v=true,vlen=256"]. Native configs render
// to nil.
func Argv(cfg internal.EmulatorConfig) []string {
	if cfg.Native() {
		return nil
	}
	argv := []string{cfg.BaseCommand}
	if cpu := cpuOption(cfg); cpu != "" {
		argv = append(argv, "-cpu", cpu)
	}
	return argv
}

func CommandLine(cfg internal.EmulatorConfig) string {
	if cfg.Native() {
		return "(native)"
	}
	return strings.Join(Argv(cfg), " ")
}

func cpuOption(cfg internal.EmulatorConfig) string {
	if cfg.CPUModel == "" {
		return ""
	}
	parts := []string{cfg.CPUModel}
	for _, k := range slices.Sorted(maps.Keys(cfg.CPUFlags)) {
		parts = append(parts, k+"="+cfg.CPUFlags[k])
	}
	return strings.Join(parts, ",")
}

func joinVLens(vs []internal.VLen) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = v.String()
	}
	return "{" + strings.Join(s, ",") + "}"
}
