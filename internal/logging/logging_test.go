package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("analyze").WithProject("shop").WithTarget("OrderServiceImpl").WithOutput(&buf)

	logger.Info("unit_extracted", map[string]any{"methods": 4})

	var e Event
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Component != "analyze" {
		t.Errorf("component = %q, want analyze", e.Component)
	}
	if e.Event != "unit_extracted" {
		t.Errorf("event = %q, want unit_extracted", e.Event)
	}
	if e.Project != "shop" {
		t.Errorf("project = %q, want shop", e.Project)
	}
	if e.Target != "OrderServiceImpl" {
		t.Errorf("target = %q, want OrderServiceImpl", e.Target)
	}
	if e.Level != LevelInfo {
		t.Errorf("level = %q, want info", e.Level)
	}
}

func TestLoggerErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := New("validate").WithOutput(&buf)

	logger.Error("compile_failed", nil, errors.New("exit status 1"))

	var e Event
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Error != "exit status 1" {
		t.Errorf("error = %q, want 'exit status 1'", e.Error)
	}
}

func TestTimedEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := New("maven").WithOutput(&buf)

	start := time.Now().Add(-50 * time.Millisecond)
	logger.TimedEvent("compile_done", start, nil)

	var e Event
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Duration < 50 {
		t.Errorf("duration = %d, want >= 50", e.Duration)
	}
}

func TestRecoveryHandlerWrapError(t *testing.T) {
	h := NewRecoveryHandler("validate")
	h.logger = h.logger.WithOutput(&bytes.Buffer{})

	err := h.WrapError(func() error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from panic")
	}

	err = h.WrapError(func() error { return nil })
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
