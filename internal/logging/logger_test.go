package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("device rebuilt", "count", 2)
	if !strings.Contains(buf.String(), `"msg":"device rebuilt"`) || !strings.Contains(buf.String(), `"count":2`) {
		t.Fatalf("unexpected json output: %s", buf.String())
	}

	buf.Reset()
	logger, err = New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level")
	}

	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	if err != nil || lvl != slog.LevelInfo {
		t.Fatalf("expected info default, got %v (%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seqtrain.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = f.Close()
}
