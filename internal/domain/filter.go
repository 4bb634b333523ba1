package domain

import (
	"strings"
	"time"
)

// Filter narrows a batch of events. Every field is optional; a zero field disables
// its clause and an event is kept only when all active clauses hold.
type Filter struct {
	Start time.Time // inclusive
	End   time.Time // inclusive
	AppID string
	Env   string
	Host  string
}

// IsEmpty reports whether no clause is active.
func (f Filter) IsEmpty() bool {
	return f.Start.IsZero() && f.End.IsZero() && f.AppID == "" && f.Env == "" && f.Host == ""
}

// Match reports whether the event satisfies the filter. String clauses compare
// case-insensitively. An event without a timestamp never satisfies a time clause.
func (f Filter) Match(event LogEvent) bool {
	if !f.Start.IsZero() || !f.End.IsZero() {
		if event.Timestamp.IsZero() {
			return false
		}
		if !f.Start.IsZero() && event.Timestamp.Before(f.Start) {
			return false
		}
		if !f.End.IsZero() && event.Timestamp.After(f.End) {
			return false
		}
	}
	if f.AppID != "" && !strings.EqualFold(event.AppID, f.AppID) {
		return false
	}
	if f.Env != "" && !strings.EqualFold(event.Env, f.Env) {
		return false
	}
	if f.Host != "" && !strings.EqualFold(event.Host, f.Host) {
		return false
	}
	return true
}

// Apply returns the matching events in their original order. The result is never nil.
func (f Filter) Apply(events []LogEvent) []LogEvent {
	out := make([]LogEvent, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
