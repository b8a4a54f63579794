package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "debug", want: DebugLevel},
		{input: "info", want: InfoLevel},
		{input: "warn", want: WarnLevel},
		{input: "warning", want: WarnLevel},
		{input: "error", want: ErrorLevel},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLogLevel(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLogLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    LogFormat
		wantErr bool
	}{
		{input: "json", want: JSONFormat},
		{input: "text", want: TextFormat},
		{input: "console", want: TextFormat},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLogFormat(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLogFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func newBufferedLogger(t *testing.T, level LogLevel) (*ZapLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := NewZapLogger(Config{Level: level, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewZapLogger() error = %v", err)
	}
	return log, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("no log output")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	return entry
}

func TestZapLoggerJSONOutput(t *testing.T) {
	log, buf := newBufferedLogger(t, InfoLevel)

	log.Info("record created", "resource", "events", "id", "e1")

	entry := decodeLine(t, buf)
	if entry["message"] != "record created" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["resource"] != "events" || entry["id"] != "e1" {
		t.Errorf("fields missing: %v", entry)
	}
}

func TestZapLoggerLevelFiltering(t *testing.T) {
	log, buf := newBufferedLogger(t, WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("below-threshold entries were written: %s", buf.String())
	}

	log.Warn("visible")
	if buf.Len() == 0 {
		t.Error("warn entry was not written at warn level")
	}
}

func TestZapLoggerWith(t *testing.T) {
	log, buf := newBufferedLogger(t, InfoLevel)

	child := log.With("component", "api")
	child.Info("mounted")

	entry := decodeLine(t, buf)
	if entry["component"] != "api" {
		t.Errorf("component = %v, want api", entry["component"])
	}
}

func TestZapLoggerWithContext(t *testing.T) {
	log, buf := newBufferedLogger(t, InfoLevel)

	ctx := WithRequestID(context.Background(), "req-42")
	log.WithContext(ctx).Info("handled")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
}

func TestZapLoggerWithContextNoRequestID(t *testing.T) {
	log, buf := newBufferedLogger(t, InfoLevel)

	log.WithContext(context.Background()).Info("handled")

	entry := decodeLine(t, buf)
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id present without one in context")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("RequestIDFromContext = %q, want abc", got)
	}
}

// recordingLogger collects entries for async dispatcher tests.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, level+":"+msg)
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.record("debug", msg) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.record("info", msg) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.record("warn", msg) }
func (r *recordingLogger) Error(msg string, args ...any) { r.record("error", msg) }
func (r *recordingLogger) With(args ...any) Logger       { return r }
func (r *recordingLogger) WithContext(ctx context.Context) Logger {
	return r
}

func (r *recordingLogger) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

func TestWrapAsyncDisabledPassthrough(t *testing.T) {
	base := &recordingLogger{}
	wrapped := WrapAsync(base, AsyncConfig{Enabled: false})
	if wrapped != Logger(base) {
		t.Error("disabled WrapAsync should return the base logger unchanged")
	}
}

func TestAsyncLoggerStopDrains(t *testing.T) {
	base := &recordingLogger{}
	wrapped := WrapAsync(base, AsyncConfig{Enabled: true, QueueSize: 64, WorkerCount: 2})
	async, ok := wrapped.(*AsyncLogger)
	if !ok {
		t.Fatalf("WrapAsync returned %T, want *AsyncLogger", wrapped)
	}

	for i := 0; i < 20; i++ {
		async.Info("queued")
	}
	async.Stop()

	if got := len(base.snapshot()); got != 20 {
		t.Errorf("delivered %d entries, want all 20 after Stop", got)
	}
}

func TestAsyncLoggerLevelsReachBase(t *testing.T) {
	base := &recordingLogger{}
	wrapped := WrapAsync(base, AsyncConfig{Enabled: true, QueueSize: 8, WorkerCount: 1})
	async := wrapped.(*AsyncLogger)

	async.Debug("d")
	async.Info("i")
	async.Warn("w")
	async.Error("e")
	async.Stop()

	got := base.snapshot()
	want := []string{"debug:d", "info:i", "warn:w", "error:e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAsyncLoggerIgnoresAfterStop(t *testing.T) {
	base := &recordingLogger{}
	async := WrapAsync(base, AsyncConfig{Enabled: true}).(*AsyncLogger)
	async.Stop()

	async.Info("late")
	if got := len(base.snapshot()); got != 0 {
		t.Errorf("delivered %d entries after Stop, want 0", got)
	}
}
