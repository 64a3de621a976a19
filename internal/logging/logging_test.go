package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/config"
)

func TestBuild_JSONStdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, sync, err := build(config.LogConfig{Level: "info", Format: "json", Output: "stdout"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("dataset replaced", zap.Int("records", 3))
	sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines=%q", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "dataset replaced" || entry["records"] != float64(3) || entry["level"] != "info" {
		t.Fatalf("entry=%v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts: %v", entry)
	}
}

func TestBuild_ConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, sync, err := build(config.LogConfig{Level: "debug", Format: "console", Output: "stdout"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("scope saved")
	sync()
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "scope saved") {
		t.Fatalf("out=%q", buf.String())
	}
}

func TestBuild_FileAndBoth(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "roster.log")
	var buf bytes.Buffer
	logger, sync, err := build(config.LogConfig{Level: "warn", Format: "json", Output: "both", File: path, MaxSizeMB: 1}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("unit mapping malformed")
	sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "unit mapping malformed") || !strings.Contains(buf.String(), "unit mapping malformed") {
		t.Fatalf("file=%q stdout=%q", b, buf.String())
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.LogConfig{
		{Level: "loud"},
		{Level: "info", Format: "xml"},
		{Level: "info", Output: "syslog"},
		{Level: "info", Output: "file"},
	} {
		if _, sync, err := build(cfg, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		} else {
			sync()
		}
	}
}
