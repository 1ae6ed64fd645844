// Package gatherer holds the pieces every result sink shares: conversion to
// wire types, run status accounting and fan-out.
package gatherer

import (
	"fmt"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
)

// Tally counts what a run did. It is fed events in order and is not safe for
// concurrent use.
type Tally struct {
	Planned   int
	Total     int
	Passed    int
	Failed    int
	FailedIDs []string

	CompileError *string
	Degraded     *string
	Cancelled    bool
}

func (t *Tally) Start(info internal.RunInfo) {
	t.Planned = info.Cases
}

func (t *Tally) Add(res internal.ExecutionResult) {
	t.Total++
	if res.Passed {
		t.Passed++
		return
	}
	t.Failed++
	t.FailedIDs = append(t.FailedIDs, res.Case.ID)
	if res.Failure == internal.FailureCancelled {
		t.Cancelled = true
	}
}

func (t *Tally) Status() api.RunStatus {
	switch {
	case t.CompileError != nil:
		return api.BuildError
	case t.Total == 0 && t.Planned == 0:
		return api.Degraded
	case t.Cancelled || t.Total < t.Planned:
		return api.Interrupted
	case t.Failed > 0:
		return api.Failed
	}
	return api.Clean
}

func (t *Tally) Summary() string {
	switch s := t.Status(); s {
	case api.BuildError:
		return fmt.Sprintf("%s: %s", s, *t.CompileError)
	case api.Degraded:
		return fmt.Sprintf("%s: 0 cases", s)
	case api.Interrupted:
		return fmt.Sprintf("%s: %d of %d cases finished", s, t.Total, t.Planned)
	case api.Failed:
		return fmt.Sprintf("%s: %d of %d cases failed", s, t.Failed, t.Total)
	default:
		return fmt.Sprintf("%s: %d of %d cases passed", s, t.Passed, t.Total)
	}
}
