package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 4, 1024*1024)
	if err != nil {
		t.Fatalf("NewRotatingLogger returned error: %v", err)
	}
	defer rl.Close()

	if _, err := rl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	name := logFilePrefix + weekKey(time.Now()) + logFileSuffix
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Expected weekly log file %s: %v", name, err)
	}
	if string(content) != "hello\n" {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 4, 10)
	if err != nil {
		t.Fatalf("NewRotatingLogger returned error: %v", err)
	}
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if _, err := rl.Write([]byte("12345678\n")); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, logFilePrefix+"*"+logFileSuffix))
	if len(matches) != 3 {
		t.Errorf("Expected 3 log files after size rotation, got %v", matches)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 1024)
	if err != nil {
		t.Fatalf("NewRotatingLogger returned error: %v", err)
	}
	defer rl.Close()

	old := filepath.Join(dir, logFilePrefix+"2000-W01.log")
	other := filepath.Join(dir, "unrelated.txt")
	for _, p := range []string{old, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("cleanupOldLogs returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Unrelated files must be kept")
	}
}

func TestInitLoggerConsoleOnly(t *testing.T) {
	InitLogger("")
	defer func() { DefaultLoggingService = nil }()

	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		t.Fatal("Expected logger to be initialized")
	}
	if err := Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestHelpersWithoutInit(t *testing.T) {
	DefaultLoggingService = nil
	Info("info without init")
	Warn("warn without init")
	Error("error without init")
	Debug("debug without init")
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/compatibility?drug=Morphine&drug=Haloperidol&drug=", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	out := buf.String()
	for _, want := range []string{
		"status_code=418",
		"bytes_written=2",
		"path=/v1/compatibility",
		"drug_count=2",
		"blank_drug_slots=1",
		"diluent_filter=false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
	for _, unwanted := range []string{"Morphine", "Haloperidol", "query="} {
		if strings.Contains(out, unwanted) {
			t.Errorf("Expected log not to contain %q, got %s", unwanted, out)
		}
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/legend", nil))
	if strings.Contains(buf.String(), "drug_count") {
		t.Errorf("Expected no lookup attributes outside compatibility requests, got %s", buf.String())
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Errorf("Expected health checks not to be logged, got %s", buf.String())
	}
}
