package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, jsonOutput bool) *Logger {
	logger := New()
	logger.SetOutput(buf)
	logger.SetLevel(LevelInfo)
	logger.SetJSON(jsonOutput)
	return logger
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) Entry {
	t.Helper()
	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		setLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"Debug at Debug level", LevelDebug, LevelDebug, true},
		{"Info at Debug level", LevelDebug, LevelInfo, true},
		{"Debug at Info level", LevelInfo, LevelDebug, false},
		{"Info at Info level", LevelInfo, LevelInfo, true},
		{"Warn at Info level", LevelInfo, LevelWarn, true},
		{"Info at Warn level", LevelWarn, LevelInfo, false},
		{"Error at Warn level", LevelWarn, LevelError, true},
		{"Warn at Error level", LevelError, LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newTestLogger(&buf, false)
			logger.SetLevel(tt.setLevel)

			switch tt.logLevel {
			case LevelDebug:
				logger.Debug("test message")
			case LevelInfo:
				logger.Info("test message")
			case LevelWarn:
				logger.Warn("test message")
			case LevelError:
				logger.Error("test message")
			}

			hasOutput := buf.Len() > 0
			if hasOutput != tt.shouldLog {
				t.Errorf("Expected shouldLog=%v, got output=%q", tt.shouldLog, buf.String())
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	logger.Info("test message %d", 42)

	entry := decodeEntry(t, &buf)
	if entry.Level != "info" {
		t.Errorf("Expected level info, got %s", entry.Level)
	}
	if entry.Message != "test message 42" {
		t.Errorf("Expected message 'test message 42', got '%s'", entry.Message)
	}
	if entry.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestHumanReadableFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, false)

	logger.Warn("hello world")

	output := buf.String()
	if !strings.Contains(output, "level=warning") {
		t.Errorf("Expected level=warning in output, got: %s", output)
	}
	if !strings.Contains(output, "hello world") {
		t.Errorf("Expected 'hello world' in output, got: %s", output)
	}
}

func TestCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	ctx := WithCorrelationID(context.Background(), "test-correlation-123")
	logger.InfoContext(ctx, "test message")

	entry := decodeEntry(t, &buf)
	if entry.Fields[CorrelationIDField] != "test-correlation-123" {
		t.Errorf("Expected correlation ID 'test-correlation-123', got '%v'", entry.Fields[CorrelationIDField])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	logger.WithFields(map[string]interface{}{
		"image":   "ubuntu:14.04",
		"pattern": "<!>.<>",
	}).Info("checking image")

	entry := decodeEntry(t, &buf)
	if entry.Fields["image"] != "ubuntu:14.04" {
		t.Errorf("Expected image='ubuntu:14.04', got %v", entry.Fields["image"])
	}
	if entry.Fields["pattern"] != "<!>.<>" {
		t.Errorf("Expected pattern='<!>.<>', got %v", entry.Fields["pattern"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	logger.WithError(errors.New("boom")).Error("request failed")

	entry := decodeEntry(t, &buf)
	if entry.Fields["error"] != "boom" {
		t.Errorf("Expected error='boom', got %v", entry.Fields["error"])
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	ctx := WithLogFields(context.Background(), map[string]interface{}{"service": "web"})
	ctx = WithLogFields(ctx, map[string]interface{}{"image": "nginx:1.25"})
	logger.InfoContext(ctx, "test message")

	entry := decodeEntry(t, &buf)
	if entry.Fields["service"] != "web" {
		t.Errorf("Expected service='web', got %v", entry.Fields["service"])
	}
	if entry.Fields["image"] != "nginx:1.25" {
		t.Errorf("Expected image='nginx:1.25', got %v", entry.Fields["image"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{" error ", LevelError},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.level.String(); result != tt.expected {
				t.Errorf("Level.String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, false)

	if err := logger.Configure("debug", "json"); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	if logger.GetLevel() != LevelDebug {
		t.Errorf("GetLevel() = %v, want DEBUG", logger.GetLevel())
	}

	logger.Debug("configured")
	entry := decodeEntry(t, &buf)
	if entry.Message != "configured" {
		t.Errorf("Expected message 'configured', got %q", entry.Message)
	}

	if err := logger.Configure("info", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	previous := Default()
	defer SetDefault(previous)

	var buf bytes.Buffer
	SetDefault(newTestLogger(&buf, false))

	Info("package level info")

	if !strings.Contains(buf.String(), "package level info") {
		t.Errorf("Package-level function failed, got: %s", buf.String())
	}
}

func TestGetCorrelationID(t *testing.T) {
	ctx := context.Background()
	if id := GetCorrelationID(ctx); id != "" {
		t.Errorf("Expected empty string, got %q", id)
	}

	ctx = WithCorrelationID(ctx, "test-id")
	if id := GetCorrelationID(ctx); id != "test-id" {
		t.Errorf("Expected 'test-id', got %q", id)
	}
}

func TestLoggerDoesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	derived := logger.WithField("derived", true)

	logger.Info("original")
	entry := decodeEntry(t, &buf)
	if entry.Fields["derived"] != nil {
		t.Error("Original logger should not have derived field")
	}

	buf.Reset()
	derived.Info("derived")
	entry = decodeEntry(t, &buf)
	if entry.Fields["derived"] != true {
		t.Error("Derived logger should have derived field")
	}
}
