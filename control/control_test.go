package control

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func TestControlEcho(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/"

	var mu sync.Mutex
	var received []byte
	done := make(chan struct{}, 1)

	srv, err := Start(dir, 0, 0, func(data []byte) {
		mu.Lock()
		received = append([]byte(nil), data...)
		mu.Unlock()
		done <- struct{}{}
	}, slog.Default())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop(dir)

	client, err := Dial(dir)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if client == nil {
		t.Fatal("Dial returned nil file for an existing control FIFO")
	}
	defer client.Close()

	if err := Send(client, []byte("ping\x00")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for control callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(received) != "ping" {
		t.Errorf("received = %q, want %q (null-terminated)", received, "ping")
	}
}

func TestDialAbsentControlIsNotAnError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/"

	f, err := Dial(dir)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if f != nil {
		t.Error("expected a nil file when no control FIFO exists")
	}
}

func TestStopRemovesControlFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/"

	srv, err := Start(dir, 0, 0, func([]byte) {}, slog.Default())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	srv.Stop(dir)

	if _, err := os.Stat(dir + FileName); !os.IsNotExist(err) {
		t.Errorf("expected control file to be removed, stat err = %v", err)
	}
}
