package domain

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// TimestampLayout is the wire format of every timestamp in a LogEvent payload:
// nine fractional digits and a numeric zone offset.
const TimestampLayout = "2006-01-02T15:04:05.000000000-0700"

// Layouts accepted when decoding, tried in order.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.000000000-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

// LogEvent represents one structured log line as it travels through a topic.
// Every field is optional; unset strings are empty and unset times are zero.
type LogEvent struct {
	Timestamp      time.Time
	KafkaTimestamp time.Time
	Host           string
	Env            string
	Team           string
	AppID          string
	TaskID         string
	Type           string
	JSON           bool
	Level          Level
	Message        string
	Logger         string
	Thread         string
	MDC            map[string]string
	Raw            []byte // The undecoded payload, never serialized
}

// wireLogEvent mirrors LogEvent with the payload field names.
type wireLogEvent struct {
	Timestamp      string            `json:"timestamp,omitempty"`
	KafkaTimestamp string            `json:"@timestamp,omitempty"`
	Host           string            `json:"host,omitempty"`
	Env            string            `json:"sys_env,omitempty"`
	Team           string            `json:"sys_team,omitempty"`
	AppID          string            `json:"sys_appid,omitempty"`
	TaskID         string            `json:"sys_taskid,omitempty"`
	Type           string            `json:"sys_type,omitempty"`
	JSON           bool              `json:"sys_json,omitempty"`
	Level          json.RawMessage   `json:"level,omitempty"`
	Message        string            `json:"message,omitempty"`
	Logger         string            `json:"logger,omitempty"`
	Thread         string            `json:"thread,omitempty"`
	MDC            map[string]string `json:"mdc,omitempty"`
}

// MarshalJSON encodes the event using the wire field names. Unset fields are omitted.
func (e LogEvent) MarshalJSON() ([]byte, error) {
	w := wireLogEvent{
		Timestamp:      FormatTimestamp(e.Timestamp),
		KafkaTimestamp: FormatTimestamp(e.KafkaTimestamp),
		Host:           e.Host,
		Env:            e.Env,
		Team:           e.Team,
		AppID:          e.AppID,
		TaskID:         e.TaskID,
		Type:           e.Type,
		JSON:           e.JSON,
		Message:        e.Message,
		Logger:         e.Logger,
		Thread:         e.Thread,
		MDC:            e.MDC,
	}
	if e.Level.IsSet() {
		level, err := json.Marshal(e.Level)
		if err != nil {
			return nil, err
		}
		w.Level = level
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a wire payload. Unknown fields are ignored and absent
// fields stay unset. Raw is not touched; callers that keep payloads set it themselves.
func (e *LogEvent) UnmarshalJSON(data []byte) error {
	var w wireLogEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ts, err := ParseTimestamp(w.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	kts, err := ParseTimestamp(w.KafkaTimestamp)
	if err != nil {
		return fmt.Errorf("@timestamp: %w", err)
	}
	level, err := decodeLevel(w.Level)
	if err != nil {
		return err
	}

	*e = LogEvent{
		Timestamp:      ts,
		KafkaTimestamp: kts,
		Host:           w.Host,
		Env:            w.Env,
		Team:           w.Team,
		AppID:          w.AppID,
		TaskID:         w.TaskID,
		Type:           w.Type,
		JSON:           w.JSON,
		Level:          level,
		Message:        w.Message,
		Logger:         w.Logger,
		Thread:         w.Thread,
		MDC:            w.MDC,
		Raw:            e.Raw,
	}
	return nil
}

// Level may arrive as a name or as an slf4j integer code.
func decodeLevel(raw json.RawMessage) (Level, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return LevelUnset, nil
	}
	var level Level
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &level); err != nil {
			return LevelUnset, err
		}
		return level, nil
	}
	return ParseLevel(string(raw))
}

// ParseLogEvent decodes a payload and keeps a copy of it in Raw.
func ParseLogEvent(payload []byte) (LogEvent, error) {
	var event LogEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return LogEvent{}, fmt.Errorf("failed to decode log event: %w", err)
	}
	event.Raw = bytes.Clone(payload)
	return event, nil
}

// FormatTimestamp renders t in TimestampLayout, or "" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses any accepted timestamp layout. An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Equal compares the identifying fields of two events. KafkaTimestamp, Logger,
// Thread, MDC and Raw do not take part; timestamps compare as instants.
func (e LogEvent) Equal(other LogEvent) bool {
	return e.Timestamp.Equal(other.Timestamp) &&
		e.Host == other.Host &&
		e.Env == other.Env &&
		e.Team == other.Team &&
		e.AppID == other.AppID &&
		e.TaskID == other.TaskID &&
		e.Type == other.Type &&
		e.JSON == other.JSON &&
		e.Level == other.Level &&
		e.Message == other.Message
}

// Hash is consistent with Equal.
func (e LogEvent) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	if !e.Timestamp.IsZero() {
		binary.BigEndian.PutUint64(buf[:], uint64(e.Timestamp.UnixNano()))
	}
	_, _ = d.Write(buf[:])
	for _, s := range []string{e.Host, e.Env, e.Team, e.AppID, e.TaskID, e.Type, e.Message} {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	flags := []byte{byte(e.Level), 0}
	if e.JSON {
		flags[1] = 1
	}
	_, _ = d.Write(flags)
	return d.Sum64()
}
