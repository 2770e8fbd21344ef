package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-1")
	Get().Info(ctx, "kpis computed", Int("rows", 12), Error(errors.New("boom")))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "kpis computed" {
		t.Errorf("expected msg, got %v", line["msg"])
	}
	if line["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", line["request_id"])
	}
	if line["rows"] != float64(12) {
		t.Errorf("expected rows 12, got %v", line["rows"])
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected caller in source, got %q", src)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(ctx, "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug line missing: %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("api").With(String("component", "upload")).Info(context.Background(), "test message", String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "api.component=upload") {
		t.Errorf("expected bound field, got %q", out)
	}
	if !strings.Contains(out, "api.k=v") {
		t.Errorf("expected grouped field, got %q", out)
	}
	if RequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
}
