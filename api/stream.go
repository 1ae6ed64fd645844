package api

import "time"

// MsgType is a message type for streaming run events
type MsgType string

const (
	StartRunMsg      MsgType = "run_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachCaseMsg     MsgType = "case_reach"
	FinishCaseMsg    MsgType = "case_finish"
	FinishRunMsg     MsgType = "run_finish"
)

// Output size constraints for streamed run data
const (
	MaxRunDataHeight = 40
	MaxRunDataWidth  = 80
)

// Header is the common header for all streamed messages
type Header struct {
	RunID   string  `json:"run_id"`
	MsgType MsgType `json:"msg_type"`
	Time    string  `json:"time"`
}

type StartRun struct {
	Header
	Board    string `json:"board"`
	DType    int    `json:"dtype"`
	Accuracy string `json:"accuracy"`
	PlanID   string `json:"plan_id,omitempty"`
	Cases    int    `json:"cases"`
}

type StartCompile struct {
	Header
}

type FinishCompile struct {
	Header
	Steps []RunData `json:"steps"`
}

type ReachCase struct {
	Header
	CaseID string `json:"case_id"`
}

type FinishCase struct {
	Header
	Result CaseResult `json:"result"`
}

// FinishRun is sent once per run. CompileError and Degraded carry the reason
// when the run did not execute its cases.
type FinishRun struct {
	Header
	Status       RunStatus `json:"status"`
	Total        int       `json:"total"`
	Passed       int       `json:"passed"`
	Failed       int       `json:"failed"`
	CompileError *string   `json:"compile_error,omitempty"`
	Degraded     *string   `json:"degraded,omitempty"`
}

func NewHeader(runID string, msgType MsgType) Header {
	return Header{
		RunID:   runID,
		MsgType: msgType,
		Time:    time.Now().Format(time.RFC3339),
	}
}

func NewStartRun(runID, board string, dtype int, accuracy, planID string, cases int) StartRun {
	return StartRun{
		Header:   NewHeader(runID, StartRunMsg),
		Board:    board,
		DType:    dtype,
		Accuracy: accuracy,
		PlanID:   planID,
		Cases:    cases,
	}
}

func NewStartCompile(runID string) StartCompile {
	return StartCompile{Header: NewHeader(runID, StartCompileMsg)}
}

func NewFinishCompile(runID string, steps []RunData) FinishCompile {
	return FinishCompile{Header: NewHeader(runID, FinishCompileMsg), Steps: steps}
}

func NewReachCase(runID, caseID string) ReachCase {
	return ReachCase{Header: NewHeader(runID, ReachCaseMsg), CaseID: caseID}
}

func NewFinishCase(runID string, res CaseResult) FinishCase {
	return FinishCase{Header: NewHeader(runID, FinishCaseMsg), Result: res}
}
