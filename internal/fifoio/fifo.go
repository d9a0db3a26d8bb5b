package fifoio

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultPipeCapacity is used when a caller does not request an explicit
// per-client kernel buffer size.
const DefaultPipeCapacity = 1 << 20 // 1 MiB

// MinPipeCapacity and MaxPipeCapacity bound the capacities the server
// requests through SetCapacity (see server.clampCapacity): requests below
// the minimum fall back to DefaultPipeCapacity, and requests above the
// maximum are clamped to it.
const (
	MinPipeCapacity = 4 << 10   // 4 KiB
	MaxPipeCapacity = 256 << 20 // 256 MiB
)

// Create makes the FIFO node at path if it does not already exist.
// An existing node at path is treated as success.
func Create(path string, mode uint32) error {
	err := unix.Mkfifo(path, mode)
	if err != nil && !errors.Is(err, unix.EEXIST) {
		return err
	}
	return nil
}

// pollInterval is the delay between retries of a FIFO open that raced
// against the peer's side of the handshake.
const pollInterval = time.Millisecond

// OpenNonblockRetry opens path with the given flags (which must include
// O_NONBLOCK) and O_CREAT-free semantics, retrying up to attempts times
// on ENOENT (the node has not appeared yet) or ENXIO (the peer has not
// opened its end of the FIFO yet). It returns the last error if every
// attempt fails.
func OpenNonblockRetry(path string, flags int, attempts int) (*os.File, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		f, err := os.OpenFile(path, flags, 0)
		if err == nil {
			return f, nil
		}
		lastErr = err
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, unix.ENXIO) {
			return nil, err
		}
		time.Sleep(pollInterval)
	}
	return nil, lastErr
}

// SetCapacity sets the kernel pipe buffer size for f and returns the
// capacity the kernel actually granted. If the requested size is
// rejected, it falls back to the system-advertised maximum
// (/proc/sys/fs/pipe-max-size), or DefaultPipeCapacity if that cannot be
// read either.
func SetCapacity(f *os.File, size int) (int, error) {
	got, err := unix.FcntlInt(f.Fd(), unix.F_SETPIPE_SZ, size)
	if err == nil {
		return got, nil
	}

	fallback := systemPipeMaxSize()
	got, ferr := unix.FcntlInt(f.Fd(), unix.F_SETPIPE_SZ, fallback)
	if ferr != nil {
		return 0, err
	}
	return got, nil
}

// Capacity returns the current kernel pipe buffer size for f.
func Capacity(f *os.File) (int, error) {
	return unix.FcntlInt(f.Fd(), unix.F_GETPIPE_SZ, 0)
}

// QueuedBytes returns the number of bytes currently sitting unread in
// f's kernel pipe buffer, used by the fan-out writer to decide whether a
// record fits without blocking.
func QueuedBytes(f *os.File) (int, error) {
	return unix.IoctlGetInt(int(f.Fd()), unix.TIOCINQ)
}

func systemPipeMaxSize() int {
	data, err := os.ReadFile("/proc/sys/fs/pipe-max-size")
	if err != nil {
		return DefaultPipeCapacity
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return DefaultPipeCapacity
	}
	return n
}

// Remove unlinks the FIFO node at path. A missing node is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
