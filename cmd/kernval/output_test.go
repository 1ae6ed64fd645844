package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/report"
	"github.com/programme-lv/kernval/internal/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFeedback(t *testing.T) {
	var buf bytes.Buffer
	outputFeedback(&buf, []feedbackRow{
		{unit: "interpreter", health: healthOK, message: "/usr/bin/python3"},
		{unit: "board rvv", health: healthWarn, message: "qemu-riscv64 not found"},
		{unit: "oracle scripts", health: healthError, message: "tests: no such file"},
	})

	out := buf.String()
	for _, want := range []string{"UNIT", "HEALTH", "OKAY", "WARN", "ERROR", "/usr/bin/python3", "board rvv"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "buffers get no color codes")
}

func TestOutputCases(t *testing.T) {
	cat := catalog.Default()
	cases := []internal.TestCase{
		internal.NewTestCase("add", internal.DTypeInt8, internal.VLen256, "common"),
		internal.NewTestCase("softmax", internal.DTypeInt8, internal.VLenNone, ""),
	}

	var buf bytes.Buffer
	require.NoError(t, outputCases(&buf, cat, cases))
	out := buf.String()
	assert.Contains(t, out, "add-256-common")
	assert.Contains(t, out, "add_int8.elf")
	assert.Contains(t, out, "softmax_int8.elf")
	assert.Contains(t, out, "TOTAL")

	err := outputCases(&buf, cat, []internal.TestCase{internal.NewTestCase("nope", internal.DTypeInt8, internal.VLenNone, "")})
	require.ErrorIs(t, err, catalog.ErrUnknownOperator)
}

func TestOutputBoards(t *testing.T) {
	var buf bytes.Buffer
	outputBoards(&buf, emulator.DefaultResolver())
	out := buf.String()
	assert.Contains(t, out, "x86_ref")
	assert.Contains(t, out, "(native)")
	assert.Contains(t, out, "qemu-riscv64 -cpu rv64,v=true,vext_spec=v1.0,vlen=256")
	assert.Contains(t, out, "nn2_rvm_elf")
}

func TestReportShowByRunID(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	buildErr := "make: *** [nn2_rvv_elf] Error 2"
	r := api.RunReport{
		RunID:       "r42",
		Board:       "rvv",
		DType:       8,
		Accuracy:    "0.99",
		Status:      api.Failed,
		Total:       2,
		Passed:      1,
		Failed:      1,
		FailedIDs:   []string{"add-128-vector"},
		Compilation: api.CompileResult{Error: &buildErr},
		Cases: []api.CaseResult{
			{ID: "add-128-common", Passed: true},
			{ID: "add-128-vector", Failure: string(internal.FailureKernel), Message: "kernel exited with code 1"},
		},
		TotalTimeMs: 1500,
	}
	path := filepath.Join(xdg.NewXDGDirs().ReportDir(), report.DefaultName(r.RunID))
	require.NoError(t, report.Save(path, r))

	assert.Equal(t, path, reportPath("r42"))
	assert.Equal(t, path, reportPath(path))

	loaded, err := report.Load(reportPath("r42"))
	require.NoError(t, err)

	var buf bytes.Buffer
	outputReport(&buf, loaded)
	out := buf.String()
	for _, want := range []string{"r42", "rvv", "failed", "1 passed, 1 failed, 2 total", "1.5s", "Error 2", "add-128-vector", "kernel exited with code 1"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "add-128-common")
}
