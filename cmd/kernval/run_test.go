package main

import (
	"testing"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestExitCodes(t *testing.T) {
	require.NoError(t, exitFor(tester.Outcome{Status: api.Clean}))

	for status, code := range map[api.RunStatus]int{
		api.Failed:      1,
		api.BuildError:  2,
		api.Degraded:    3,
		api.Interrupted: 130,
	} {
		err := exitFor(tester.Outcome{Status: status, Summary: string(status)})
		var ec cli.ExitCoder
		require.ErrorAs(t, err, &ec, status)
		assert.Equal(t, code, ec.ExitCode(), status)
	}
}
