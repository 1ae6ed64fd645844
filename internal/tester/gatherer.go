package tester

import (
	"github.com/programme-lv/kernval/internal"
)

//go:generate mockgen -destination=mocks/mock_gatherer.go -package=mocks github.com/programme-lv/kernval/internal/tester ResultGatherer

// ResultGatherer receives the events of a run in order:
//
//	StartRun (Degraded | StartCompile FinishCompile [CompileError] | (ReachCase FinishCase)*) FinishRun
type ResultGatherer interface {
	internal.ResultGatherer
}
