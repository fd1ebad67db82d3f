package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONLinesToFile(t *testing.T) {
	workDir := t.TempDir()
	logger, err := New(Options{WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("project created", zap.String("project", "p1"))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(workDir, ".taskboard", "logs", FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"msg":"project created"`) || !strings.Contains(text, `"project":"p1"`) {
		t.Fatalf("expected structured entry, got %q", text)
	}
	if strings.Contains(text, "hidden at info level") {
		t.Fatalf("debug entry written without verbose")
	}
}

func TestNewVerboseKeepsDebug(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Options{LogsDir: dir, Verbose: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("drag started")
	_ = logger.Sync()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "drag started") {
		t.Fatalf("expected debug entry, got %q", string(data))
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Fatalf("expected same logger back")
	}
}
