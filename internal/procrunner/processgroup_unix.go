//go:build !windows

package procrunner

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup places the child in a new process group so that
// killTree can terminate it and every descendant it spawns with a single
// signal, rather than just the immediate child.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree sends SIGKILL to the child's entire process group, grounded on
// the POSIX signalling idiom skyguan92-ai-inference-managed-by-ai's
// collector_linux.go exercises via golang.org/x/sys/unix.
func killTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}
