package fswatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetModeNoneRemovesSubscription(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.SetMode(dir, ModeAll); err != nil {
		t.Fatalf("SetMode all: %v", err)
	}
	if got := w.Mode(dir); got != ModeAll {
		t.Fatalf("Mode = %v, want ModeAll", got)
	}

	if err := w.SetMode(dir, ModeNone); err != nil {
		t.Fatalf("SetMode none: %v", err)
	}
	if got := w.Mode(dir); got != ModeNone {
		t.Fatalf("Mode = %v, want ModeNone", got)
	}
}

func TestWatchFileAdded(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.SetMode(dir, ModeAll); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "PAGE_1"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.Name != "PAGE_1" {
			t.Errorf("got event name %q, want PAGE_1", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
