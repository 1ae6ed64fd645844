package emulator

import (
	"slices"

	"github.com/programme-lv/kernval/internal"
)

type VectorUnit int

const (
	// NoVector boards have no vector unit and accept no vlen.
	NoVector VectorUnit = iota
	// FixedVector boards have one hardware vector width.
	FixedVector
	// ParamVector boards take the vector width as an emulator flag.
	ParamVector
)

func (u VectorUnit) String() string {
	switch u {
	case NoVector:
		return "none"
	case FixedVector:
		return "fixed"
	case ParamVector:
		return "param"
	}
	return "unknown"
}

// Board is one row of the emulator table.
type Board struct {
	Name        string
	BaseCommand string
	CPUModel    string
	Flags       map[string]string

	Vector      VectorUnit
	VLens       []internal.VLen
	DefaultVLen internal.VLen
	// VLenFlag is the cpu option that carries the vector width on
	// ParamVector boards.
	VLenFlag string

	// LibraryTarget is the make target that builds the board's kernel library.
	LibraryTarget string
}

// SupportsVLen reports whether v is one of the board's vector widths.
func (b Board) SupportsVLen(v internal.VLen) bool {
	return slices.Contains(b.VLens, v)
}

// MatrixVLens returns the vlens a vlen-aware operator is expanded over,
// ascending. Scalar boards return nil.
func (b Board) MatrixVLens() []internal.VLen {
	if b.Vector == NoVector {
		return nil
	}
	out := slices.Clone(b.VLens)
	slices.Sort(out)
	return out
}

// PickVLen chooses the vlen used to resolve a case: the case's own vlen, the
// run-wide fallback on boards with a configurable width, otherwise none.
func (b Board) PickVLen(caseVLen, fallback internal.VLen) internal.VLen {
	if caseVLen.IsSet() {
		return caseVLen
	}
	if b.Vector == ParamVector {
		return fallback
	}
	return internal.VLenNone
}

var allVLens = []internal.VLen{internal.VLen128, internal.VLen256, internal.VLen512}

func DefaultBoards() []Board {
	return []Board{
		{
			Name:          "x86_ref",
			Vector:        NoVector,
			LibraryTarget: "nn2_ref_x86",
		},
		{
			Name:          "e907",
			BaseCommand:   "qemu-riscv32",
			CPUModel:      "e907fp",
			Vector:        NoVector,
			LibraryTarget: "nn2_e907_elf",
		},
		{
			Name:          "c906",
			BaseCommand:   "qemu-riscv64",
			CPUModel:      "c906fdv",
			Vector:        FixedVector,
			VLens:         []internal.VLen{internal.VLen128},
			DefaultVLen:   internal.VLen128,
			LibraryTarget: "nn2_c906_elf",
		},
		{
			Name:          "c920",
			BaseCommand:   "qemu-riscv64",
			CPUModel:      "c920",
			Vector:        FixedVector,
			VLens:         []internal.VLen{internal.VLen128},
			DefaultVLen:   internal.VLen128,
			LibraryTarget: "nn2_c920_elf",
		},
		{
			Name:          "c908",
			BaseCommand:   "qemu-riscv64",
			CPUModel:      "c908v",
			Vector:        ParamVector,
			VLens:         []internal.VLen{internal.VLen128, internal.VLen256},
			DefaultVLen:   internal.VLen128,
			VLenFlag:      "vlen",
			LibraryTarget: "nn2_c908_elf",
		},
		{
			Name:        "rvv",
			BaseCommand: "qemu-riscv64",
			CPUModel:    "rv64",
			Flags: map[string]string{
				"v":         "true",
				"vext_spec": "v1.0",
			},
			Vector:        ParamVector,
			VLens:         allVLens,
			DefaultVLen:   internal.VLen128,
			VLenFlag:      "vlen",
			LibraryTarget: "nn2_rvv_elf",
		},
		{
			Name:        "rvm",
			BaseCommand: "qemu-riscv64",
			CPUModel:    "rv64",
			Flags: map[string]string{
				"v":        "true",
				"x-matrix": "true",
			},
			Vector:        ParamVector,
			VLens:         allVLens,
			DefaultVLen:   internal.VLen128,
			VLenFlag:      "vlen",
			LibraryTarget: "nn2_rvm_elf",
		},
	}
}
