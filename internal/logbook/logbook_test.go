package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "nested", "activity.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	lines, total := book.Tail(10)
	if lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v %d", lines, total)
	}
	var nilBook *Logbook
	nilBook.Error("ignored")
	if lines, _ := nilBook.Tail(1); lines != nil {
		t.Fatalf("nil logbook should tail nothing")
	}
}

func TestAppendFormatsAndLevels(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	book, err := New(filepath.Join(t.TempDir(), "activity.log"), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Warn("request failed:\n  timeout")
	book.Error("boom")
	lines, _ := book.Tail(5)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "2026-01-02T03:04:05Z WARN  request failed: timeout" {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if LevelOf(lines[0]) != LevelWarn || LevelOf(lines[1]) != LevelError {
		t.Fatalf("levels not parsed: %q %q", lines[0], lines[1])
	}
	if LevelOf("garbage") != LevelInfo {
		t.Fatalf("expected info fallback")
	}
}

func TestMirrorSendsEntriesToZap(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	book, err := New(filepath.Join(t.TempDir(), "activity.log"), WithMirror(zap.New(core)))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Info("Moved task t1 to Done")
	book.Error("request failed")
	entries := recorded.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 mirrored entries, got %d", len(entries))
	}
	if entries[0].Message != "Moved task t1 to Done" || entries[1].Level != zap.ErrorLevel {
		t.Fatalf("unexpected mirrored entries %+v", entries)
	}
}
