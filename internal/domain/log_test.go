package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(t *testing.T) LogEvent {
	t.Helper()
	ts := time.Date(2017, 3, 14, 9, 26, 53, 589793238, time.FixedZone("CET", 3600))
	return LogEvent{
		Timestamp:      ts,
		KafkaTimestamp: ts.Add(time.Second),
		Host:           "mesos-node-1",
		Env:            "prod",
		Team:           "platform",
		AppID:          "wild-webapp",
		TaskID:         "task-42",
		Type:           "log",
		JSON:           true,
		Level:          LevelWarn,
		Message:        "disk almost full",
		Logger:         "com.example.Service",
		Thread:         "main",
		MDC:            map[string]string{"requestId": "abc"},
	}
}

func TestLogEvent_RoundTrip(t *testing.T) {
	event := sampleEvent(t)

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded LogEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, event.Equal(decoded), "decoded event differs: %+v", decoded)
	assert.Equal(t, event.Hash(), decoded.Hash())
	assert.True(t, event.KafkaTimestamp.Equal(decoded.KafkaTimestamp))
	assert.Equal(t, event.Logger, decoded.Logger)
	assert.Equal(t, event.Thread, decoded.Thread)
	assert.Equal(t, event.MDC, decoded.MDC)
}

func TestLogEvent_WireNames(t *testing.T) {
	data, err := json.Marshal(sampleEvent(t))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "2017-03-14T09:26:53.589793238+0100", fields["timestamp"])
	assert.Equal(t, "2017-03-14T09:26:54.589793238+0100", fields["@timestamp"])
	assert.Equal(t, "prod", fields["sys_env"])
	assert.Equal(t, "platform", fields["sys_team"])
	assert.Equal(t, "wild-webapp", fields["sys_appid"])
	assert.Equal(t, "task-42", fields["sys_taskid"])
	assert.Equal(t, "log", fields["sys_type"])
	assert.Equal(t, true, fields["sys_json"])
	assert.Equal(t, "WARN", fields["level"])
	assert.NotContains(t, fields, "raw")
}

func TestLogEvent_EmptyEventEncodesToEmptyObject(t *testing.T) {
	data, err := json.Marshal(LogEvent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestLogEvent_UnknownFieldsIgnored(t *testing.T) {
	plain := `{"timestamp":"2017-03-14T09:26:53.000000000+0000","host":"h1","sys_appid":"a","level":"INFO","message":"m"}`
	extra := `{"timestamp":"2017-03-14T09:26:53.000000000+0000","host":"h1","sys_appid":"a","level":"INFO","message":"m","pod":"x-1","nested":{"a":[1,2]}}`

	var a, b LogEvent
	require.NoError(t, json.Unmarshal([]byte(plain), &a))
	require.NoError(t, json.Unmarshal([]byte(extra), &b))

	assert.True(t, a.Equal(b))
}

func TestLogEvent_MissingFields(t *testing.T) {
	var event LogEvent
	require.NoError(t, json.Unmarshal([]byte(`{"message":"only a message"}`), &event))

	assert.False(t, event.JSON)
	assert.True(t, event.Timestamp.IsZero())
	assert.Equal(t, LevelUnset, event.Level)
	assert.Nil(t, event.MDC)
	assert.Equal(t, "only a message", event.Message)
}

func TestLogEvent_DecodeVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    func(t *testing.T, e LogEvent)
		wantErr bool
	}{
		{
			name:    "rfc3339 timestamp",
			payload: `{"timestamp":"2017-03-14T09:26:53.5Z"}`,
			want: func(t *testing.T, e LogEvent) {
				assert.True(t, e.Timestamp.Equal(time.Date(2017, 3, 14, 9, 26, 53, 500000000, time.UTC)))
			},
		},
		{
			name:    "colon offset with nine digits",
			payload: `{"timestamp":"2017-03-14T09:26:53.000000001+01:00"}`,
			want: func(t *testing.T, e LogEvent) {
				assert.Equal(t, 1, e.Timestamp.Nanosecond())
			},
		},
		{
			name:    "slf4j level code",
			payload: `{"level":30}`,
			want: func(t *testing.T, e LogEvent) {
				assert.Equal(t, LevelWarn, e.Level)
			},
		},
		{
			name:    "lower-case level",
			payload: `{"level":"error"}`,
			want: func(t *testing.T, e LogEvent) {
				assert.Equal(t, LevelError, e.Level)
			},
		},
		{
			name:    "empty mdc stays present",
			payload: `{"mdc":{}}`,
			want: func(t *testing.T, e LogEvent) {
				assert.NotNil(t, e.MDC)
				assert.Empty(t, e.MDC)
			},
		},
		{name: "bad timestamp", payload: `{"timestamp":"yesterday"}`, wantErr: true},
		{name: "bad level", payload: `{"level":"LOUD"}`, wantErr: true},
		{name: "not json", payload: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseLogEvent([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.payload, string(event.Raw))
			tt.want(t, event)
		})
	}
}

func TestLogEvent_EqualIgnoresNonIdentifyingFields(t *testing.T) {
	a := sampleEvent(t)
	b := a
	b.Logger = "other"
	b.Thread = "worker-7"
	b.MDC = nil
	b.Raw = []byte("{}")
	b.KafkaTimestamp = time.Time{}
	b.Timestamp = a.Timestamp.UTC()

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := a
	c.Env = "dev"
	assert.False(t, a.Equal(c))

	d := a
	d.JSON = false
	assert.False(t, a.Equal(d))
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]Level{
		"TRACE":   LevelTrace,
		"debug":   LevelDebug,
		" Info ":  LevelInfo,
		"WARNING": LevelWarn,
		"40":      LevelError,
		"0":       LevelTrace,
	} {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("15")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.True(t, LevelTrace < LevelError)
}

func TestParseOffsetPolicy(t *testing.T) {
	p, err := ParseOffsetPolicy("Earliest")
	require.NoError(t, err)
	assert.Equal(t, OffsetEarliest, p)

	p, err = ParseOffsetPolicy("latest")
	require.NoError(t, err)
	assert.Equal(t, OffsetLatest, p)

	_, err = ParseOffsetPolicy("middle")
	assert.ErrorIs(t, err, ErrInvalidOffsetPolicy)
}
