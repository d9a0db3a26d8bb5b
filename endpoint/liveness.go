package endpoint

import (
	"syscall"
	"time"

	"github.com/fifomesh/mpa/errcode"
)

// MinStopTimeout is the smallest timeout LivenessStop accepts; smaller
// values are clamped up to it.
const MinStopTimeout = 100 * time.Millisecond

const pollInterval = 20 * time.Millisecond

// LivenessStop reads the server PID from dir's info file, sends it a
// graceful interrupt (SIGTERM), polls for exit for up to timeout,
// escalates to SIGKILL if it hasn't exited by then, and finally sweeps
// any dangling endpoint tree regardless of which path was taken.
//
// It returns true if a live server process was found and signaled
// (whether or not it exited before timeout elapsed), and false if the
// endpoint had no running server to stop.
func LivenessStop(dir string, timeout time.Duration) (bool, error) {
	if timeout < MinStopTimeout {
		timeout = MinStopTimeout
	}

	desc, _, err := ReadDescriptor(dir)
	if err != nil {
		// No descriptor to read a PID from; still sweep whatever is left.
		_ = RemoveAll(dir)
		return false, nil
	}

	pid := desc.ServerPID
	if pid <= 0 || !processAlive(pid) {
		_ = RemoveAll(dir)
		return false, nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		_ = RemoveAll(dir)
		return true, errcode.Wrap(errcode.Other, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			break
		}
		time.Sleep(pollInterval)
	}
	if processAlive(pid) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}

	_ = RemoveAll(dir)
	return true, nil
}

// SweepIfDead is the client-side counterpart of LivenessStop: a client
// that found dir's rendezvous FIFO dead (open failed with "no such
// device or address" — no writer attached) may unlink the whole endpoint
// tree on the absent server's behalf, but only after confirming via the
// descriptor's PID that no server process is actually still holding it.
// A missing or unreadable descriptor is treated as confirmation the
// server is gone, matching LivenessStop's own fallback.
func SweepIfDead(dir string) {
	desc, _, err := ReadDescriptor(dir)
	if err != nil {
		_ = RemoveAll(dir)
		return
	}
	if desc.ServerPID <= 0 || !processAlive(desc.ServerPID) {
		_ = RemoveAll(dir)
	}
}

// processAlive reports whether pid refers to a live process, using the
// POSIX convention of signal 0 (no signal delivered, only existence and
// permission checked).
func processAlive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}
