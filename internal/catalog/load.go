package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/emulator"
)

// fileOperator is an [[operators]] entry. Entries naming a built-in operator
// overlay the fields they set; other entries declare new operators.
type fileOperator struct {
	Name     string         `toml:"name"`
	Variants []string       `toml:"variants"`
	VLenAxis *bool          `toml:"vlen_axis"`
	DTypes   []int          `toml:"dtypes"`
	Boards   []string       `toml:"boards"`
	Script   string         `toml:"script"`
	Args     string         `toml:"args"`
	Function string         `toml:"function"`
	Params   map[string]any `toml:"params"`
	Output   string         `toml:"output"`
	Binary   string         `toml:"binary"`
	Disabled bool           `toml:"disabled"`
}

// fileBoard is a [[boards]] entry; it replaces a built-in board of the same
// name or adds a new one.
type fileBoard struct {
	Name          string            `toml:"name"`
	BaseCommand   string            `toml:"base_command"`
	CPUModel      string            `toml:"cpu_model"`
	Flags         map[string]string `toml:"flags"`
	Vector        string            `toml:"vector"`
	VLens         []int             `toml:"vlens"`
	DefaultVLen   int               `toml:"default_vlen"`
	VLenFlag      string            `toml:"vlen_flag"`
	LibraryTarget string            `toml:"library_target"`
}

type fileRoot struct {
	Operators []fileOperator `toml:"operators"`
	Boards    []fileBoard    `toml:"boards"`
}

// LoadFile merges the catalog file at path over the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Default().Merge(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Merge returns a new catalog with the TOML document from r applied.
func (c *Catalog) Merge(r io.Reader) (*Catalog, error) {
	var root fileRoot
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	ops := c.Operators()
	index := make(map[string]int, len(ops))
	for i, op := range ops {
		index[op.Name] = i
	}
	disabled := map[string]bool{}

	for _, fo := range root.Operators {
		if fo.Name == "" {
			return nil, fmt.Errorf("operator entry is missing a name")
		}
		if fo.Disabled {
			disabled[fo.Name] = true
			continue
		}
		i, exists := index[fo.Name]
		var op Operator
		if exists {
			op = ops[i]
		} else {
			op = Operator{Kind: KindOf(fo.Name), Name: fo.Name}
			if op.Kind == KindUnknown {
				op.Kind = KindExternal
			}
		}
		if err := fo.overlay(&op); err != nil {
			return nil, err
		}
		if exists {
			ops[i] = op
		} else {
			index[op.Name] = len(ops)
			ops = append(ops, op)
		}
	}

	kept := ops[:0]
	for _, op := range ops {
		if !disabled[op.Name] {
			kept = append(kept, op)
		}
	}

	boards := append([]emulator.Board(nil), c.boards...)
	for _, fb := range root.Boards {
		b, err := fb.board()
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return New(kept, boards...)
}

func (fo fileOperator) overlay(op *Operator) error {
	if fo.Variants != nil {
		op.Variants = fo.Variants
	}
	if fo.VLenAxis != nil {
		op.VLenAxis = *fo.VLenAxis
	}
	if fo.DTypes != nil {
		op.DTypes = make([]internal.DType, len(fo.DTypes))
		for i, d := range fo.DTypes {
			op.DTypes[i] = internal.DType(d)
		}
	}
	if fo.Boards != nil {
		op.Boards = fo.Boards
	}
	if fo.Script != "" {
		op.Script = fo.Script
	}
	if fo.Args != "" {
		a, err := ParseArgStyle(fo.Args)
		if err != nil {
			return fmt.Errorf("operator %s: %w", fo.Name, err)
		}
		op.Args = a
	}
	if fo.Function != "" {
		op.Function = fo.Function
	}
	if fo.Params != nil {
		op.Params = fo.Params
	}
	if fo.Output != "" {
		op.Output = fo.Output
	}
	if fo.Binary != "" {
		op.Binary = fo.Binary
	}
	return nil
}

func (fb fileBoard) board() (emulator.Board, error) {
	if fb.Name == "" {
		return emulator.Board{}, fmt.Errorf("board entry is missing a name")
	}
	b := emulator.Board{
		Name:          fb.Name,
		BaseCommand:   fb.BaseCommand,
		CPUModel:      fb.CPUModel,
		Flags:         fb.Flags,
		DefaultVLen:   internal.VLen(fb.DefaultVLen),
		VLenFlag:      fb.VLenFlag,
		LibraryTarget: fb.LibraryTarget,
	}
	switch fb.Vector {
	case "", "none":
		b.Vector = emulator.NoVector
	case "fixed":
		b.Vector = emulator.FixedVector
	case "param":
		b.Vector = emulator.ParamVector
		if b.VLenFlag == "" {
			b.VLenFlag = "vlen"
		}
	default:
		return emulator.Board{}, fmt.Errorf("board %s: unknown vector unit %q", fb.Name, fb.Vector)
	}
	for _, n := range fb.VLens {
		v, err := internal.ParseVLen(fmt.Sprint(n))
		if err != nil {
			return emulator.Board{}, fmt.Errorf("board %s: %w", fb.Name, err)
		}
		b.VLens = append(b.VLens, v)
	}
	if b.Vector != emulator.NoVector {
		if len(b.VLens) == 0 {
			return emulator.Board{}, fmt.Errorf("board %s: a %s vector unit needs vlens", fb.Name, b.Vector)
		}
		if !b.DefaultVLen.IsSet() {
			b.DefaultVLen = b.VLens[0]
		}
		if !b.SupportsVLen(b.DefaultVLen) {
			return emulator.Board{}, fmt.Errorf("board %s: default vlen %s is not in its vlens", fb.Name, b.DefaultVLen)
		}
	}
	return b, nil
}
