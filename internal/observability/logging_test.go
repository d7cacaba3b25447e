package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerDefaults(t *testing.T) {
	logger := NewLogger(LogConfig{})
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	if logger.config.Level != "info" {
		t.Errorf("default level = %q, want info", logger.config.Level)
	}
	if logger.config.Format != "json" {
		t.Errorf("default format = %q, want json", logger.config.Format)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("messages below warn level were logged")
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Error("warn/error messages were not logged")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: "json", Output: &buf})

	logger.Info(context.Background(), "structured", "seeds", 5)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record["msg"] != "structured" {
		t.Errorf("msg = %v, want structured", record["msg"])
	}
	if record["seeds"] != float64(5) {
		t.Errorf("seeds = %v, want 5", record["seeds"])
	}
}

func TestLoggerContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: "json", Output: &buf})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	ctx = context.WithValue(ctx, NamespaceKey, "user-1")
	logger.Info(ctx, "with context")

	out := buf.String()
	if !strings.Contains(out, "req-123") {
		t.Error("request_id not included in log record")
	}
	if !strings.Contains(out, "user-1") {
		t.Error("namespace not included in log record")
	}
}

func TestRedactAPIKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf})

	logger.Info(context.Background(), "config loaded",
		"detail", "api_key=sk_live_abcdefghij1234567890")

	out := buf.String()
	if strings.Contains(out, "abcdefghij1234567890") {
		t.Errorf("API key not redacted: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("redaction marker missing: %s", out)
	}
}

func TestRedactOpenAIKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf})

	key := "sk-" + strings.Repeat("a", 48)
	logger.Error(context.Background(), "request failed", "error", "invalid key "+key)

	if strings.Contains(buf.String(), key) {
		t.Errorf("OpenAI key not redacted: %s", buf.String())
	}
}

func TestRedactCustomPatterns(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Output:         &buf,
		RedactPatterns: []string{`user-secret-\d+`},
	})

	logger.Info(context.Background(), "found user-secret-42 in payload")

	out := buf.String()
	if strings.Contains(out, "user-secret-42") {
		t.Errorf("custom pattern not redacted: %s", out)
	}
}
