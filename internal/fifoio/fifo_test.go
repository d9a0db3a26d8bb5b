package fifoio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestCreateIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "fifo")

	if err := Create(path, 0o666); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := Create(path, 0o666); err != nil {
		t.Fatalf("second Create should be a no-op: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Fatalf("expected a FIFO, got mode %v", info.Mode())
	}
}

func TestOpenNonblockRetrySucceedsOnceReaderAppears(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "fifo")
	if err := Create(path, 0o666); err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := make(chan *os.File, 1)
	errCh := make(chan error, 1)
	go func() {
		f, err := OpenNonblockRetry(path, unix.O_WRONLY|unix.O_NONBLOCK, 500)
		if err != nil {
			errCh <- err
			return
		}
		done <- f
	}()

	// Give the writer a moment to observe ENXIO at least once before a
	// reader shows up.
	time.Sleep(5 * time.Millisecond)
	reader, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()

	select {
	case f := <-done:
		f.Close()
	case err := <-errCh:
		t.Fatalf("OpenNonblockRetry failed: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for writer open to succeed")
	}
}

func TestOpenNonblockRetryGivesUpOnMissingNode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "never-created")

	_, err := OpenNonblockRetry(path, unix.O_RDONLY|unix.O_NONBLOCK, 5)
	if err == nil {
		t.Fatal("expected an error for a FIFO that never appears")
	}
}

func TestCapacityRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "fifo")
	if err := Create(path, 0o666); err != nil {
		t.Fatalf("Create: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	got, err := SetCapacity(f, MinPipeCapacity)
	if err != nil {
		t.Fatalf("SetCapacity: %v", err)
	}
	if got < MinPipeCapacity {
		t.Errorf("granted capacity %d smaller than requested %d", got, MinPipeCapacity)
	}

	current, err := Capacity(f)
	if err != nil {
		t.Fatalf("Capacity: %v", err)
	}
	if current != got {
		t.Errorf("Capacity() = %d, want %d (as returned by SetCapacity)", current, got)
	}
}

func TestRemoveMissingIsNotAnError(t *testing.T) {
	t.Parallel()
	if err := Remove(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("Remove of a missing node returned %v, want nil", err)
	}
}
