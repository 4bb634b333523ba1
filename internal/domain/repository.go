package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// OffsetPolicy tells a new consumer group where to start reading a topic.
type OffsetPolicy string

const (
	OffsetEarliest OffsetPolicy = "earliest"
	OffsetLatest   OffsetPolicy = "latest"
)

// ParseOffsetPolicy accepts "earliest" or "latest" in any case.
func ParseOffsetPolicy(s string) (OffsetPolicy, error) {
	switch p := OffsetPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OffsetEarliest, OffsetLatest:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidOffsetPolicy, s, OffsetEarliest, OffsetLatest)
	}
}

// Record is one message as delivered by the broker.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	ID        string // Broker-native identifier, e.g. a stream entry ID
	Key       []byte
	Value     []byte
	Time      time.Time // Timestamp assigned by the broker
}

// RecordSource reads records from a topic on behalf of a consumer group.
type RecordSource interface {
	// Poll performs one bounded read, waiting at most timeout and returning at most
	// max records (max <= 0 means no count bound). An empty result is not an error.
	Poll(ctx context.Context, max int, timeout time.Duration) ([]Record, error)

	// Close releases the connection to the broker.
	Close() error
}

// RecordSink publishes record values to a topic.
type RecordSink interface {
	// Publish hands one value to the client. Delivery follows the client's defaults.
	Publish(ctx context.Context, value []byte) error

	// Close flushes pending writes and releases the connection to the broker.
	Close() error
}
