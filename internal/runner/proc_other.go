//go:build !unix

package runner

import (
	"os"
	"os/exec"
)

func killProcessGroup(cmd *exec.Cmd) {}

func exitSignal(ps *os.ProcessState) *int64 { return nil }
