package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "coach.log")

	if err := Init(logPath, true); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("hello %s", "world")
	LogRequest("out", "openai", "ada", map[string]any{"ok": true})
	Logger().Info("snapshot saved", zap.Int("documents", 2))
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, "host=openai") {
		t.Fatalf("expected debug request content, got: %s", content)
	}
	if !strings.Contains(content, `"documents":2`) {
		t.Fatalf("expected structured field, got: %s", content)
	}
}

func TestInfoLevelDropsRequests(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "coach.log")
	if err := Init(logPath, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	LogRequest("out", "openai", "ada", "payload")
	LogEvent("kept")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "payload") {
		t.Fatalf("expected request payload to be filtered at info level, got: %s", data)
	}
	if !strings.Contains(string(data), "kept") {
		t.Fatalf("expected event at info level, got: %s", data)
	}
}

func TestBuildRequestMessageDefaults(t *testing.T) {
	msg := buildRequestMessage(" in ", " ", "", map[string]any{"ok": true})
	if !strings.Contains(msg, "[IN]") {
		t.Fatalf("expected uppercased direction, got: %s", msg)
	}
	if !strings.Contains(msg, "host=unknown") {
		t.Fatalf("expected default host, got: %s", msg)
	}
	if !strings.Contains(msg, "model=unknown") {
		t.Fatalf("expected default model, got: %s", msg)
	}
	if !strings.Contains(msg, "payload={\"ok\":true}") {
		t.Fatalf("expected payload json, got: %s", msg)
	}
}

func TestFormatPayloadVariants(t *testing.T) {
	if got := formatPayload(nil); got != "null" {
		t.Fatalf("nil payload: %s", got)
	}
	if got := formatPayload(" "); got != `""` {
		t.Fatalf("empty string payload: %s", got)
	}
	if got := formatPayload([]byte("hi")); got != "hi" {
		t.Fatalf("byte payload: %s", got)
	}
	if got := formatPayload(testStringer("ok")); got != "ok" {
		t.Fatalf("stringer payload: %s", got)
	}
}

func TestInitDiscard(t *testing.T) {
	if err := Init("", false); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if Logger().Core().Enabled(zap.ErrorLevel) {
		t.Fatal("expected no-op logger when no path is configured")
	}
}
