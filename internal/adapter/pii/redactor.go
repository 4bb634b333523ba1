package pii

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/V4T54L/log-tracer/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks sensitive MDC values before events are displayed.
type Redactor struct {
	keysToRedact map[string]struct{} // Lower-cased for case-insensitive lookups
	logger       *slog.Logger
}

// NewRedactor creates a new Redactor for the given MDC keys. Blank keys are ignored.
func NewRedactor(keys []string, logger *slog.Logger) *Redactor {
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			keySet[key] = struct{}{}
		}
	}
	return &Redactor{
		keysToRedact: keySet,
		logger:       logger,
	}
}

// Redact returns a copy of the event whose configured MDC values are replaced by
// RedactedPlaceholder. The input event and its MDC map are not modified.
func (r *Redactor) Redact(event domain.LogEvent) domain.LogEvent {
	if len(r.keysToRedact) == 0 || len(event.MDC) == 0 {
		return event
	}

	var redacted map[string]string
	count := 0
	for key := range event.MDC {
		if _, ok := r.keysToRedact[strings.ToLower(key)]; !ok {
			continue
		}
		if redacted == nil {
			redacted = maps.Clone(event.MDC)
		}
		redacted[key] = RedactedPlaceholder
		count++
	}

	if redacted == nil {
		return event
	}
	r.logger.Debug("redacted MDC values", "app_id", event.AppID, "fields", count)
	event.MDC = redacted
	return event
}
