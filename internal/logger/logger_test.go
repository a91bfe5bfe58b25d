package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_WritesDailyFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Options{Dir: dir, Level: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Infow("dropped below warn")
	l.Warnw("hello", "k", "v")
	_ = l.Sync()

	path := filepath.Join(dir, time.Now().Format(time.DateOnly)+".log")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"hello"`) {
		t.Errorf("warn entry missing:\n%s", raw)
	}
	if strings.Contains(string(raw), "dropped below warn") {
		t.Errorf("info entry written at warn level:\n%s", raw)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Dir: t.TempDir(), Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != zap.S() {
		t.Error("empty context should fall back to the global logger")
	}
	l := zap.NewNop().Sugar()
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext did not return the attached logger")
	}
}
