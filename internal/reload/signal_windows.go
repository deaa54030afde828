//go:build windows

package reload

import (
	"fmt"
	"syscall"
)

const openNoCTTY = 0

// Windows has no SIGUSR1/SIGUSR2; these values are never delivered.
var (
	sigUSR1 = syscall.Signal(0x1e)
	sigUSR2 = syscall.Signal(0x1f)
)

// signalPID is not supported on Windows.
func signalPID(pid int, _ syscall.Signal) error {
	return fmt.Errorf("cannot signal process %d: signals are not supported on Windows", pid)
}
