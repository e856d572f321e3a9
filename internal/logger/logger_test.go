// SPDX-License-Identifier: EPL-2.0

package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FileSink(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	log, err := New(Config{
		Level: "warn",
		File:  FileConfig{Enabled: true, Path: dir, Name: "test.log"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("dropped")
	log.Warn("stream fallback", zap.String("share_mode", "shared"))
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log has %d lines, want 1 (info filtered): %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "stream fallback" || entry["share_mode"] != "shared" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
	if ts, _ := entry["ts"].(string); len(ts) != len("2006-01-02 15:04:05.000") {
		t.Errorf("ts = %q, want millisecond layout", ts)
	}
}

func TestNewFileWriter_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := newFileWriter(FileConfig{Path: dir, MaxBackups: -3, MaxAgeDays: -1})
	if err != nil {
		t.Fatal(err)
	}

	if w.Filename != filepath.Join(dir, defaultFileName) {
		t.Errorf("Filename = %q", w.Filename)
	}
	if w.MaxSize != defaultMaxSizeMB || w.MaxBackups != 0 || w.MaxAge != 0 {
		t.Errorf("limits = %d/%d/%d", w.MaxSize, w.MaxBackups, w.MaxAge)
	}
}
