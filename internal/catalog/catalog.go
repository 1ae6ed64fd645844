// Package catalog holds the static operator table the test matrix is
// expanded from.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/emulator"
)

var ErrUnknownOperator = errors.New("unknown operator")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Operator is the static metadata of one operator.
type Operator struct {
	Kind Kind
	Name string

	// Variants in declaration order; empty means the operator has no variant
	// axis and yields one case per vlen.
	Variants []string
	VLenAxis bool

	// DTypes and Boards restrict where the operator runs; empty means any.
	DTypes []internal.DType
	Boards []string

	// Script is the oracle script path relative to the oracle directory.
	Script string
	Args   ArgStyle

	// Function and Params are used by driver scripts. Function defaults to
	// the operator name; Params is passed as a dict.
	Function string
	Params   map[string]any

	// Output is the vector file name the script writes.
	Output string
	// Binary is the kernel binary stem; the dtype suffix and .elf are
	// appended.
	Binary string
}

func (o Operator) SupportsDType(d internal.DType) bool {
	return len(o.DTypes) == 0 || slices.Contains(o.DTypes, d)
}

func (o Operator) SupportsBoard(board string) bool {
	return len(o.Boards) == 0 || slices.Contains(o.Boards, board)
}

func (o Operator) HasVariant(v string) bool {
	if len(o.Variants) == 0 {
		return v == ""
	}
	return slices.Contains(o.Variants, v)
}

// VectorFile is the oracle output file name.
func (o Operator) VectorFile() string {
	if o.Output != "" {
		return o.Output
	}
	return o.Name + "_test_data_f32.bin"
}

// DriverFunction is the function a driver script is called through.
func (o Operator) DriverFunction() string {
	if o.Function != "" {
		return o.Function
	}
	return o.Name
}

// DriverModule is the module name a driver script is imported as.
func (o Operator) DriverModule() string {
	base := filepath.Base(o.Script)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BinaryName is the kernel executable for dtype, e.g. "convolution_int8.elf".
func (o Operator) BinaryName(d internal.DType) string {
	stem := o.Binary
	if stem == "" {
		stem = o.Name
	}
	return stem + "_" + d.Suffix() + ".elf"
}

func (o Operator) validate() error {
	if o.Name == "" {
		return errors.New("operator without a name")
	}
	if o.Script == "" {
		return fmt.Errorf("operator %s: no oracle script", o.Name)
	}
	if o.Args == ArgsDTypeVLenVariant && !o.VLenAxis {
		return fmt.Errorf("operator %s: %s arguments need a vlen axis", o.Name, o.Args)
	}
	if o.Args == ArgsDriver {
		if !identifier.MatchString(o.DriverModule()) {
			return fmt.Errorf("operator %s: script %s cannot be imported as a module", o.Name, o.Script)
		}
		if !identifier.MatchString(o.DriverFunction()) {
			return fmt.Errorf("operator %s: %q is not a function name", o.Name, o.DriverFunction())
		}
	}
	seen := make(map[string]bool, len(o.Variants))
	for _, v := range o.Variants {
		if v == "" {
			return fmt.Errorf("operator %s: empty variant", o.Name)
		}
		if seen[v] {
			return fmt.Errorf("operator %s: variant %s declared twice", o.Name, v)
		}
		seen[v] = true
	}
	for _, d := range o.DTypes {
		if !d.Valid() {
			return fmt.Errorf("operator %s: invalid dtype %d", o.Name, d)
		}
	}
	return nil
}

// Catalog is an ordered operator table plus board overrides.
type Catalog struct {
	ops    []Operator
	boards []emulator.Board
}

// New validates ops and keeps them in the given order.
func New(ops []Operator, boards ...emulator.Board) (*Catalog, error) {
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if err := op.validate(); err != nil {
			return nil, err
		}
		if seen[op.Name] {
			return nil, fmt.Errorf("operator %s declared twice", op.Name)
		}
		seen[op.Name] = true
	}
	return &Catalog{ops: slices.Clone(ops), boards: slices.Clone(boards)}, nil
}

// Operators returns the operators in declaration order.
func (c *Catalog) Operators() []Operator {
	return slices.Clone(c.ops)
}

func (c *Catalog) Lookup(name string) (Operator, error) {
	for _, op := range c.ops {
		if op.Name == name {
			return op, nil
		}
	}
	return Operator{}, fmt.Errorf("%w: %q", ErrUnknownOperator, name)
}

// Resolver returns the built-in board table with this catalog's board
// overrides applied.
func (c *Catalog) Resolver() *emulator.Resolver {
	return emulator.NewResolver(append(emulator.DefaultBoards(), c.boards...)...)
}

var poolVariants = []string{
	"packn_global", "global",
	"packn_2x2s2", "pack1_2x2s2",
	"packn_2x2s2p0", "pack1_2x2s2p0",
	"packn_2x2s2p1", "pack1_2x2s2p1",
	"packn_3x3s2", "pack1_3x3s2",
	"packn_3x3s2p0", "pack1_3x3s2p0",
	"packn_3x3s2p1", "pack1_3x3s2p1",
	"packn_3x3s1_p1", "pack1_3x3s1_p1",
	"packn_s3k5", "pack1_s3k5",
}

// onnxOp is an operator generated by a function of the multi-operator
// reference script. params are the shapes and attributes it is called with.
func onnxOp(k Kind, params map[string]any) Operator {
	return Operator{
		Kind:   k,
		Name:   k.String(),
		Script: "onnx_ref/ref.py",
		Args:   ArgsDriver,
		Params: params,
	}
}

var nchw = []int{1, 16, 7, 7}

// Default returns the built-in catalog.
func Default() *Catalog {
	ops := []Operator{
		{
			Kind: KindConvolution,
			Name: "convolution",
			Variants: []string{
				"pack1_com", "pack1_gemm", "packnto1", "pack1ton",
				"packn_com", "packn_gemm",
				"pack1_conv1x1s1", "packn_conv1x1s1",
				"pack1_conv3x3s1_winograd", "packn_conv3x3s1_winograd",
			},
			VLenAxis: true,
			Script:   "python_ref/convolution_vlen.py",
			Args:     ArgsDTypeVLenVariant,
			Output:   "convolution_nchw_data_f32.bin",
		},
		{
			Kind: KindDepthwiseConvolution,
			Name: "depthwise_convolution",
			Variants: []string{
				"pack1_conv3x3s2", "pack1_conv3x3s1", "pack1_conv5x5s2", "pack1_conv5x5s1",
				"packn_conv3x3s2", "packn_conv3x3s1", "packn_conv5x5s2", "packn_conv5x5s1",
			},
			VLenAxis: true,
			Script:   "python_ref/depthwise_convolution_vlen.py",
			Args:     ArgsDTypeVLenVariant,
			Output:   "depthwise_convolution_nchw_data_f32.bin",
		},
		{
			Kind:     KindAveragePool,
			Name:     "averagepool",
			Variants: poolVariants,
			VLenAxis: true,
			Script:   "python_ref/averagepool_vlen.py",
			Args:     ArgsDTypeVLenVariant,
			Output:   "averagepool_nchw_data_f32.bin",
		},
		{
			Kind:     KindMaxPool,
			Name:     "maxpool",
			Variants: poolVariants,
			VLenAxis: true,
			Script:   "python_ref/maxpool_vlen.py",
			Args:     ArgsDTypeVLenVariant,
			Output:   "maxpool_nchw_data_f32.bin",
		},
		{
			Kind:     KindAdd,
			Name:     "add",
			Variants: []string{"common", "vector", "size1", "flag0"},
			VLenAxis: true,
			Script:   "python_ref/add_vlen.py",
			Args:     ArgsDTypeVLenVariant,
			Output:   "add_nchw_data_f32.bin",
		},
		{
			Kind: KindConvolutionNCHW,
			Name: "convolution_nchw",
			Variants: []string{
				"random", "gemm_conv1x1s1", "conv3x3s1_im2col_sgemm",
				"conv3x3s1_winograd64", "conv3x3s1_winograd64_pack", "gemm_random",
			},
			DTypes: []internal.DType{internal.DTypeFP32},
			Script: "python_ref/convolution_nchw.py",
			Args:   ArgsVariant,
			Output: "convolution_nchw_data_f32.bin",
		},
		onnxOp(KindGlobalAveragePool, map[string]any{"X": nchw, "layout": "nchw"}),
		onnxOp(KindGlobalMaxPool, map[string]any{"X": nchw, "layout": "nchw"}),
		onnxOp(KindFullyConnected, map[string]any{"A": []int{4, 32}, "B": []int{32, 16}, "C": []int{16}}),
		onnxOp(KindMatMul, map[string]any{"A": []int{2, 8, 16}, "B": []int{2, 16, 8}, "transpose_a": 0, "transpose_b": 0}),
		onnxOp(KindLayerNorm, map[string]any{"X": nchw, "axis": -1, "gamma": 1.0, "beta": 0.0}),
		onnxOp(KindRMSNorm, map[string]any{"X": []int{2, 4, 32}}),
		onnxOp(KindSoftmax, map[string]any{"X": nchw, "axis": 1}),
		onnxOp(KindLRN, map[string]any{"X": nchw, "alpha": 0.0001, "beta": 0.75, "bias": 1.0, "size": 3}),
		onnxOp(KindSiLU, map[string]any{"X": nchw}),
		onnxOp(KindLeakyReLU, map[string]any{"X": nchw, "alpha": 0.1}),
		onnxOp(KindPReLU, map[string]any{"X": nchw, "slope": []int{16, 1, 1}}),
		onnxOp(KindClip, map[string]any{"input": nchw, "min": -0.5, "max": 0.5}),
		onnxOp(KindPad, map[string]any{"X": nchw, "pads": []int{0, 0, 1, 1, 0, 0, 1, 1}}),
		onnxOp(KindTranspose, map[string]any{"data": []int{2, 3, 4, 5}, "perm": []int{0, 2, 3, 1}}),
		onnxOp(KindGather, map[string]any{"data": []int{4, 6, 8}, "indices": []int{0, 2, 3}, "axis": 1}),
	}
	c, err := New(ops)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}
