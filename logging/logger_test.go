package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTextFormatter(t *testing.T) {
	f := NewTextFormatter()
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelInfo,
		Category: "ioc",
		Message:  "bean ready",
		Fields:   []Field{{Key: "bean", Value: "TestServiceA"}},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	str := string(out)
	for _, want := range []string{"INFO", "[ioc]", "bean ready", "bean=TestServiceA"} {
		if !strings.Contains(str, want) {
			t.Errorf("expected %q in %q", want, str)
		}
	}
	if !strings.HasSuffix(str, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestJsonFormatter(t *testing.T) {
	f := NewJsonFormatter()
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelWarn,
		Category: "ioc",
		Message:  "skip",
		Fields:   []Field{Err(errors.New("boom")), F("bean", "X")},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var data map[string]any
	if err := json.Unmarshal(out, &data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if data["level"] != "WARN" {
		t.Errorf("expected level WARN, got %v", data["level"])
	}
	fields, ok := data["fields"].(map[string]any)
	if !ok {
		t.Fatal("expected fields map")
	}
	if fields["error"] != "boom" || fields["bean"] != "X" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"debug", LogLevelDebug, false},
		{"WARN", LogLevelWarn, false},
		{"", LogLevelInfo, false},
		{"off", LogLevelNone, false},
		{"loud", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConsoleLoggerMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("ioc", "warn", "text", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	logger.WithFields(F("bean", "A")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "bean=A") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWithCategoryPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New("root", "info", "text", &buf)

	logger.WithCategory("child").Info("hello")

	if !strings.Contains(buf.String(), "[child]") {
		t.Errorf("expected child category, got %q", buf.String())
	}
}

func TestZapProvider(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("ioc", "debug", "zap", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("created", F("bean", "TestServiceC"))

	var data map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &data); err != nil {
		t.Fatalf("zap output is not json: %v (%q)", err, buf.String())
	}
	if data["msg"] != "created" || data["bean"] != "TestServiceC" || data["logger"] != "ioc" {
		t.Errorf("unexpected zap entry: %v", data)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := New("x", "info", "xml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDiscard(t *testing.T) {
	Discard.WithCategory("x").WithFields(F("a", 1)).Error("nothing")
}
