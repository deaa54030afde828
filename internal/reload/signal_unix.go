//go:build unix

package reload

import (
	"syscall"
)

const openNoCTTY = syscall.O_NOCTTY

var (
	sigUSR1 = syscall.SIGUSR1
	sigUSR2 = syscall.SIGUSR2
)

// signalPID sends sig to pid.
func signalPID(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}
