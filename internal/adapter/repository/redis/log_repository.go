package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/log-tracer/internal/domain"
)

// payloadField is the stream entry field holding the JSON log event.
const payloadField = "payload"

// StreamSource implements domain.RecordSource using a Redis Stream consumer group.
// The stream plays the role of the topic.
type StreamSource struct {
	client   *redis.Client
	logger   *slog.Logger
	stream   string
	group    string
	consumer string
}

// NewStreamSource creates a source reading stream as member consumer of group.
// The group is created on first use, starting at the beginning of the stream for
// OffsetEarliest or at new entries only for OffsetLatest.
func NewStreamSource(ctx context.Context, client *redis.Client, logger *slog.Logger, stream, group, consumer string, offset domain.OffsetPolicy) (*StreamSource, error) {
	s := &StreamSource{
		client:   client,
		logger:   logger.With("component", "redis_source", "stream", stream, "group", group),
		stream:   stream,
		group:    group,
		consumer: consumer,
	}

	startID, err := groupStartID(offset)
	if err != nil {
		return nil, err
	}
	if err := s.setupConsumerGroup(ctx, startID); err != nil {
		return nil, err
	}
	return s, nil
}

func groupStartID(offset domain.OffsetPolicy) (string, error) {
	switch offset {
	case domain.OffsetEarliest:
		return "0", nil
	case domain.OffsetLatest:
		return "$", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidOffsetPolicy, offset)
	}
}

func (s *StreamSource) setupConsumerGroup(ctx context.Context, startID string) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, startID).Err()
	if err != nil && !isRedisBusyGroupError(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Poll issues a single XREADGROUP blocking for at most timeout.
func (s *StreamSource) Poll(ctx context.Context, max int, timeout time.Duration) ([]domain.Record, error) {
	args := &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Block:    timeout,
	}
	if max > 0 {
		args.Count = int64(max)
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to XREADGROUP from redis: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	messages := streams[0].Messages
	records := make([]domain.Record, 0, len(messages))
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
		payload, ok := msg.Values[payloadField].(string)
		if !ok {
			s.logger.Warn("stream entry has no payload field", "message_id", msg.ID)
		}
		records = append(records, domain.Record{
			Topic: s.stream,
			ID:    msg.ID,
			Value: []byte(payload),
			Time:  entryTime(msg.ID),
		})
	}

	if err := s.acknowledge(ctx, ids); err != nil {
		return records, err
	}
	return records, nil
}

// acknowledge removes delivered entries from the group's pending list, the
// stream counterpart of committing offsets on read.
func (s *StreamSource) acknowledge(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, s.stream, s.group, ids...).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge messages: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *StreamSource) Close() error {
	return s.client.Close()
}

// StreamSink implements domain.RecordSink by appending entries to a Redis Stream.
type StreamSink struct {
	client *redis.Client
	logger *slog.Logger
	stream string
}

// NewStreamSink creates a sink appending to stream. XADD creates the stream on first use.
func NewStreamSink(client *redis.Client, logger *slog.Logger, stream string) *StreamSink {
	return &StreamSink{
		client: client,
		logger: logger.With("component", "redis_sink", "stream", stream),
		stream: stream,
	}
}

// Publish appends one entry holding value.
func (s *StreamSink) Publish(ctx context.Context, value []byte) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{payloadField: value},
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *StreamSink) Close() error {
	return s.client.Close()
}

// entryTime extracts the millisecond timestamp Redis embeds in a stream entry ID.
func entryTime(id string) time.Time {
	ms, _, found := strings.Cut(id, "-")
	if !found {
		return time.Time{}
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(n)
}

func isRedisBusyGroupError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
