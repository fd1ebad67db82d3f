package logbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatcherReportsAppends(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "activity.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	w, err := book.Watch()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	w.Start(context.Background())

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	book.Info("Created project Alpha (ALP)")

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change notification")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	book, err := New(filepath.Join(t.TempDir(), "activity.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	w, err := book.Watch()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
