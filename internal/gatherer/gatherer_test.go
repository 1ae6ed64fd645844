package gatherer_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/gatherer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, passed bool, kind internal.FailureKind) internal.ExecutionResult {
	return internal.ExecutionResult{
		Case:    internal.TestCase{ID: id, Operator: strings.Split(id, "-")[0], DType: 8},
		Passed:  passed,
		Failure: kind,
		Kernel:  &internal.RunData{Command: "k", Stdout: []byte("out"), ExitCode: 1},
	}
}

func TestTallyStatus(t *testing.T) {
	var clean gatherer.Tally
	clean.Start(internal.RunInfo{Cases: 2})
	clean.Add(result("a", true, ""))
	clean.Add(result("b", true, ""))
	assert.Equal(t, api.Clean, clean.Status())
	assert.Equal(t, "clean: 2 of 2 cases passed", clean.Summary())

	var failed gatherer.Tally
	failed.Start(internal.RunInfo{Cases: 2})
	failed.Add(result("a", true, ""))
	failed.Add(result("b", false, internal.FailureKernel))
	assert.Equal(t, api.Failed, failed.Status())
	assert.Equal(t, []string{"b"}, failed.FailedIDs)

	var empty gatherer.Tally
	empty.Start(internal.RunInfo{})
	assert.Equal(t, api.Degraded, empty.Status())
	assert.Equal(t, "degraded: 0 cases", empty.Summary())

	var cut gatherer.Tally
	cut.Start(internal.RunInfo{Cases: 3})
	cut.Add(result("a", true, ""))
	assert.Equal(t, api.Interrupted, cut.Status())

	var cancelled gatherer.Tally
	cancelled.Start(internal.RunInfo{Cases: 1})
	cancelled.Add(result("a", false, internal.FailureCancelled))
	assert.Equal(t, api.Interrupted, cancelled.Status())

	msg := "make exited with 2"
	build := gatherer.Tally{CompileError: &msg}
	build.Start(internal.RunInfo{Cases: 4})
	assert.Equal(t, api.BuildError, build.Status())
	assert.Equal(t, "build_error: make exited with 2", build.Summary())
}

func TestTrimStrToRect(t *testing.T) {
	assert.Equal(t, "", gatherer.TrimStrToRect("", 2, 3))
	assert.Equal(t, "ab\ncd", gatherer.TrimStrToRect("ab\ncd", 2, 3))
	assert.Equal(t, "abc[...]\nd", gatherer.TrimStrToRect("abcdef\nd", 2, 3))
	assert.Equal(t, "a\nb\n[...]", gatherer.TrimStrToRect("a\nb\nc\nd", 2, 3))
}

func TestToCaseResultKeepsDetailsOnlyForFailures(t *testing.T) {
	pass := gatherer.ToCaseResult(result("add-128-common", true, ""), false)
	assert.Nil(t, pass.Kernel)
	assert.Equal(t, "add", pass.Operator)

	fail := gatherer.ToCaseResult(result("add-128-common", false, internal.FailureKernel), false)
	require.NotNil(t, fail.Kernel)
	assert.Equal(t, "out", fail.Kernel.Stdout)
	assert.Equal(t, "kernel", fail.Failure)
	assert.Nil(t, fail.Oracle)
}

type recorder struct {
	msgs []map[string]any
	err  error
}

func (r *recorder) Publish(body []byte) error {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return err
	}
	r.msgs = append(r.msgs, m)
	return r.err
}

func TestStreamPublishesEveryEvent(t *testing.T) {
	rec := &recorder{}
	s := gatherer.NewStream("run-1", rec, nil)

	s.StartRun(internal.RunInfo{Board: "rvv", DType: 8, Accuracy: "0.99", Cases: 1})
	s.StartCompile()
	s.FinishCompile([]*internal.RunData{{Command: "make", Stdout: []byte(strings.Repeat("x", 200))}})
	s.ReachCase(internal.TestCase{ID: "add-128-common"})
	s.FinishCase(result("add-128-common", false, internal.FailureKernel))
	s.FinishRun()

	var types []string
	for _, m := range rec.msgs {
		assert.Equal(t, "run-1", m["run_id"])
		types = append(types, m["msg_type"].(string))
	}
	assert.Equal(t, []string{
		"run_start", "compile_start", "compile_finish", "case_reach", "case_finish", "run_finish",
	}, types)

	steps := rec.msgs[2]["steps"].([]any)
	out := steps[0].(map[string]any)["out"].(string)
	assert.Equal(t, api.MaxRunDataWidth+len("[...]"), len(out))

	last := rec.msgs[5]
	assert.Equal(t, "failed", last["status"])
	assert.EqualValues(t, 1, last["failed"])
}

func TestStreamSurvivesPublishErrors(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	s := gatherer.NewStream("run-2", rec, nil)
	s.StartRun(internal.RunInfo{})
	s.Degraded("plan unavailable")
	s.FinishRun()

	require.Len(t, rec.msgs, 2)
	assert.Equal(t, "degraded", rec.msgs[1]["status"])
	assert.Equal(t, "plan unavailable", rec.msgs[1]["degraded"])
}
