//go:build unix

package oracle_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/oracle"
	"github.com/programme-lv/kernval/internal/vectorcodec"
	"github.com/programme-lv/kernval/internal/workdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goodVector is header [2, 7] followed by the float32 1.0.
const goodVector = `printf '\002\000\000\000\007\000\000\000\000\000\200\077' > `

func setup(t *testing.T, script string, op catalog.Operator) (*oracle.Invoker, *workdir.Dir) {
	t.Helper()
	scripts := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scripts, op.Script), []byte(script), 0644))

	work, err := workdir.Open(t.TempDir())
	require.NoError(t, err)

	cat, err := catalog.New([]catalog.Operator{op})
	require.NoError(t, err)

	return &oracle.Invoker{
		Interpreter: "/bin/sh",
		Dir:         scripts,
		Work:        work,
		Catalog:     cat,
		Timeout:     5 * time.Second,
	}, work
}

func vlenOp() catalog.Operator {
	return catalog.Operator{
		Name:     "averagepool",
		Variants: []string{"packn_global", "global"},
		VLenAxis: true,
		Script:   "averagepool_vlen.sh",
		Args:     catalog.ArgsDTypeVLenVariant,
		Output:   "averagepool_nchw_data_f32.bin",
	}
}

func TestGenerateWritesVector(t *testing.T) {
	inv, work := setup(t, `echo "$@"; `+goodVector+`averagepool_nchw_data_f32.bin`, vlenOp())

	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen256, "global")
	got, err := inv.Generate(context.Background(), tc)
	require.NoError(t, err)
	assert.Equal(t, work.Join("averagepool_nchw_data_f32.bin"), got.Path)
	assert.Equal(t, "16 256 global\n", string(got.Run.Stdout))
	require.NoError(t, vectorcodec.ValidateFile(got.Path))
}

func TestGenerateRemovesStaleVector(t *testing.T) {
	inv, work := setup(t, `exit 0`, vlenOp())
	require.NoError(t, vectorcodec.WriteFile(work.Join("averagepool_nchw_data_f32.bin"), []int32{0}))

	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen128, "global")
	_, err := inv.Generate(context.Background(), tc)
	require.ErrorIs(t, err, oracle.ErrNoVector)
	assert.False(t, work.HasFile("averagepool_nchw_data_f32.bin"))
}

func TestGenerateNonzeroExit(t *testing.T) {
	inv, _ := setup(t, `echo boom >&2; exit 2`, vlenOp())
	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen128, "global")
	got, err := inv.Generate(context.Background(), tc)
	require.ErrorIs(t, err, oracle.ErrOracleFailed)
	assert.Equal(t, "boom\n", string(got.Run.Stderr))
}

func TestGenerateTimeout(t *testing.T) {
	inv, _ := setup(t, `sleep 10`, vlenOp())
	inv.Timeout = 200 * time.Millisecond
	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen128, "global")
	got, err := inv.Generate(context.Background(), tc)
	require.ErrorIs(t, err, oracle.ErrOracleFailed)
	assert.True(t, got.Run.TimedOut)
}

func TestGenerateMalformedVector(t *testing.T) {
	// header says 5 elements, one follows
	inv, _ := setup(t, `printf '\005\000\000\000\000\000\000\000' > averagepool_nchw_data_f32.bin`, vlenOp())
	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen128, "global")
	_, err := inv.Generate(context.Background(), tc)
	require.ErrorIs(t, err, vectorcodec.ErrMalformedVector)
}

func TestCommandArgumentStyles(t *testing.T) {
	inv := &oracle.Invoker{Interpreter: "python3", Dir: "/src/tests"}
	var err error
	inv.Work, err = workdir.Open(t.TempDir())
	require.NoError(t, err)

	tc := internal.NewTestCase("convolution_nchw", internal.DTypeFP32, internal.VLenNone, "gemm_random")
	spec, err := inv.Command(catalog.Operator{Name: "convolution_nchw", Script: "python_ref/convolution_nchw.py", Args: catalog.ArgsVariant}, tc)
	require.NoError(t, err)
	assert.Equal(t, "python3 /src/tests/python_ref/convolution_nchw.py gemm_random", spec.CommandLine())
	assert.Equal(t, inv.Work.Path(), spec.Dir)

	tc = internal.NewTestCase("softmax", internal.DTypeFP32, internal.VLenNone, "")
	spec, err = inv.Command(catalog.Operator{Name: "softmax", Script: "onnx_ref/ref.py", Args: catalog.ArgsOperator}, tc)
	require.NoError(t, err)
	assert.Equal(t, "python3 /src/tests/onnx_ref/ref.py softmax", spec.CommandLine())

	spec, err = inv.Command(catalog.Operator{Name: "softmax", Script: "/abs/conv.py"}, tc)
	require.NoError(t, err)
	assert.Equal(t, "python3 /abs/conv.py", spec.CommandLine())

	_, err = inv.Command(vlenOp(), internal.NewTestCase("averagepool", internal.DTypeInt8, internal.VLenNone, "global"))
	require.Error(t, err)
}

func TestGenerateRelativeScriptDir(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	require.NoError(t, os.MkdirAll(filepath.Join("tests", "python_ref"), 0755))
	op := vlenOp()
	op.Script = filepath.Join("python_ref", "averagepool_vlen.sh")
	require.NoError(t, os.WriteFile(filepath.Join("tests", op.Script), []byte(goodVector+op.Output), 0644))

	work, err := workdir.Open(t.TempDir())
	require.NoError(t, err)
	cat, err := catalog.New([]catalog.Operator{op})
	require.NoError(t, err)
	inv := &oracle.Invoker{Interpreter: "/bin/sh", Dir: "tests", Work: work, Catalog: cat, Timeout: 5 * time.Second}

	tc := internal.NewTestCase("averagepool", internal.DTypeFP16, internal.VLen128, "global")
	got, err := inv.Generate(context.Background(), tc)
	require.NoError(t, err)
	assert.Equal(t, work.Join(op.Output), got.Path)

	spec, err := inv.Command(op, tc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "tests", op.Script), spec.Args[0])
}

func driverOp() catalog.Operator {
	return catalog.Operator{
		Name:   "softmax",
		Script: "onnx_ref/ref.py",
		Args:   catalog.ArgsDriver,
		Params: map[string]any{"X": []int{1, 2}, "axis": 7},
	}
}

func TestCommandDriver(t *testing.T) {
	inv := &oracle.Invoker{Interpreter: "python3", Dir: "/src/tests"}
	var err error
	inv.Work, err = workdir.Open(t.TempDir())
	require.NoError(t, err)

	tc := internal.NewTestCase("softmax", internal.DTypeFP32, internal.VLenNone, "")
	spec, err := inv.Command(driverOp(), tc)
	require.NoError(t, err)
	assert.Equal(t, "python3", spec.Path)
	require.Len(t, spec.Args, 2)
	assert.Equal(t, "-c", spec.Args[0])
	assert.Equal(t,
		`import json, sys; sys.path.insert(0, "/src/tests/onnx_ref"); import ref; ref.softmax(("softmax", json.loads("{\"X\":[1,2],\"axis\":7}")))`,
		spec.Args[1])

	op := driverOp()
	op.Function = "unary"
	op.Params = nil
	spec, err = inv.Command(op, tc)
	require.NoError(t, err)
	assert.Contains(t, spec.Args[1], `ref.unary(("softmax", json.loads("{}")))`)
}

func TestGenerateThroughDriver(t *testing.T) {
	bin := t.TempDir()
	interpreter := filepath.Join(bin, "python")
	fake := "#!/bin/sh\n[ \"$1\" = -c ] || exit 3\nprintf '%s' \"$2\" > driver.txt\n" + goodVector + "softmax_test_data_f32.bin\n"
	require.NoError(t, os.WriteFile(interpreter, []byte(fake), 0755))

	op := driverOp()
	inv, work := setup(t, "", catalog.Operator{Name: op.Name, Script: "ref.py"})
	op.Script = "ref.py"
	cat, err := catalog.New([]catalog.Operator{op})
	require.NoError(t, err)
	inv.Catalog = cat
	inv.Interpreter = interpreter

	got, err := inv.Generate(context.Background(), internal.NewTestCase("softmax", internal.DTypeFP32, internal.VLenNone, ""))
	require.NoError(t, err)
	assert.Equal(t, work.Join("softmax_test_data_f32.bin"), got.Path)

	code, err := os.ReadFile(work.Join("driver.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "import ref; ref.softmax((")
	assert.Contains(t, string(code), strconv.Quote(inv.Dir))
}

func TestGenerateThroughPythonDriver(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}
	ref := `import struct

def softmax(case):
    name, params = case
    with open(name + "_test_data_f32.bin", "wb") as fp:
        fp.write(struct.pack("<2if", 2, params["axis"], 1.0))
`
	op := driverOp()
	op.Script = "ref.py"
	inv, work := setup(t, ref, op)
	inv.Interpreter = python

	got, err := inv.Generate(context.Background(), internal.NewTestCase("softmax", internal.DTypeFP32, internal.VLenNone, ""))
	require.NoError(t, err)
	require.NoError(t, vectorcodec.ValidateFile(got.Path))

	data, err := os.ReadFile(work.Join("softmax_test_data_f32.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0}, data[4:8])
}
