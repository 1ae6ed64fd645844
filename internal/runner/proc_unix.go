//go:build unix

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup puts the child in its own process group and makes
// cancellation SIGKILL the whole group, so emulators and interpreters
// cannot leave grandchildren behind holding the output pipes.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

func exitSignal(ps *os.ProcessState) *int64 {
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return nil
	}
	sig := int64(ws.Signal())
	return &sig
}
