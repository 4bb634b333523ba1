package pii

import (
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/log-tracer/internal/domain"
)

func TestRedactor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := NewRedactor([]string{"password", " Token ", ""}, logger)

	tests := []struct {
		name        string
		inputMDC    map[string]string
		expectedMDC map[string]string
	}{
		{
			name:        "Redact single field",
			inputMDC:    map[string]string{"password": "hunter2", "user": "bob"},
			expectedMDC: map[string]string{"password": RedactedPlaceholder, "user": "bob"},
		},
		{
			name:        "Redact case-insensitively",
			inputMDC:    map[string]string{"TOKEN": "abc", "Password": "x"},
			expectedMDC: map[string]string{"TOKEN": RedactedPlaceholder, "Password": RedactedPlaceholder},
		},
		{
			name:        "No fields to redact",
			inputMDC:    map[string]string{"user": "bob"},
			expectedMDC: map[string]string{"user": "bob"},
		},
		{
			name:        "Empty MDC",
			inputMDC:    map[string]string{},
			expectedMDC: map[string]string{},
		},
		{
			name:        "Nil MDC",
			inputMDC:    nil,
			expectedMDC: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := make(map[string]string, len(tt.inputMDC))
			for k, v := range tt.inputMDC {
				original[k] = v
			}
			event := domain.LogEvent{MDC: tt.inputMDC}

			got := redactor.Redact(event)

			if (got.MDC == nil) != (tt.expectedMDC == nil) {
				t.Fatalf("nil-ness of MDC changed: got %v, want %v", got.MDC, tt.expectedMDC)
			}
			if len(got.MDC) != len(tt.expectedMDC) {
				t.Errorf("MDC length mismatch: got %d, want %d", len(got.MDC), len(tt.expectedMDC))
			}
			for k, v := range tt.expectedMDC {
				if got.MDC[k] != v {
					t.Errorf("MDC mismatch for key %s: got %q, want %q", k, got.MDC[k], v)
				}
			}
			for k, v := range original {
				if tt.inputMDC[k] != v {
					t.Errorf("input MDC was modified for key %s", k)
				}
			}
		})
	}
}

func TestRedactor_NoKeys(t *testing.T) {
	redactor := NewRedactor(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	event := domain.LogEvent{MDC: map[string]string{"password": "x"}}

	if got := redactor.Redact(event); got.MDC["password"] != "x" {
		t.Errorf("expected no redaction, got %q", got.MDC["password"])
	}
}
