//go:build !windows

package command

import (
	"os/exec"
	"syscall"
)

func shell() (name, flag string) { return "sh", "-c" }

// setProcessGroup starts cmd in a new process group and kills the whole
// group on cancellation.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
