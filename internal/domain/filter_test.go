package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Match(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := LogEvent{Timestamp: base, AppID: "alpha", Env: "prod", Host: "mesos-node-1"}

	tests := []struct {
		name   string
		filter Filter
		event  LogEvent
		want   bool
	}{
		{name: "empty filter keeps everything", filter: Filter{}, event: event, want: true},
		{name: "env matches case-insensitively", filter: Filter{Env: "PROD"}, event: event, want: true},
		{name: "env mismatch", filter: Filter{Env: "dev"}, event: event, want: false},
		{name: "appID mismatch", filter: Filter{AppID: "alpha"}, event: LogEvent{AppID: "beta"}, want: false},
		{name: "appID match", filter: Filter{AppID: "ALPHA"}, event: event, want: true},
		{name: "host match", filter: Filter{Host: "Mesos-Node-1"}, event: event, want: true},
		{name: "host mismatch", filter: Filter{Host: "oldfaithfull"}, event: event, want: false},
		{name: "unset field fails active clause", filter: Filter{Host: "h"}, event: LogEvent{}, want: false},
		{
			name:   "inside range",
			filter: Filter{Start: base.Add(-time.Minute), End: base.Add(time.Minute)},
			event:  event,
			want:   true,
		},
		{
			name:   "range bounds are inclusive",
			filter: Filter{Start: base, End: base},
			event:  event,
			want:   true,
		},
		{
			name:   "before start",
			filter: Filter{Start: base.Add(time.Nanosecond), End: base.Add(time.Hour)},
			event:  event,
			want:   false,
		},
		{
			name:   "after end",
			filter: Filter{Start: base.Add(-time.Hour), End: base.Add(-time.Nanosecond)},
			event:  event,
			want:   false,
		},
		{name: "only start set", filter: Filter{Start: base.Add(time.Hour)}, event: event, want: false},
		{name: "only end set", filter: Filter{End: base.Add(time.Hour)}, event: event, want: true},
		{name: "missing timestamp with range", filter: Filter{End: base}, event: LogEvent{AppID: "alpha"}, want: false},
		{
			name:   "all clauses must hold",
			filter: Filter{Start: base.Add(-time.Hour), End: base.Add(time.Hour), AppID: "alpha", Env: "prod", Host: "other"},
			event:  event,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.event))
		})
	}
}

func TestFilter_ApplyKeepsOrder(t *testing.T) {
	events := []LogEvent{
		{Message: "1", Env: "prod"},
		{Message: "2", Env: "dev"},
		{Message: "3", Env: "PROD"},
	}

	got := Filter{Env: "prod"}.Apply(events)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "1", got[0].Message)
		assert.Equal(t, "3", got[1].Message)
	}
	assert.NotNil(t, Filter{Env: "none"}.Apply(events))
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Host: "h"}.IsEmpty())
}
