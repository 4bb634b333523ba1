package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/V4T54L/log-tracer/internal/domain"
)

const dialTimeout = 10 * time.Second

// messageReader is the subset of *kafka.Reader used by RecordSource.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// messageWriter is the subset of *kafka.Writer used by RecordSink.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SourceConfig describes the consumer side of a Kafka connection.
type SourceConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	ClientID string
	Offset   domain.OffsetPolicy
}

// RecordSource implements domain.RecordSource on top of a consumer-group kafka.Reader.
// Offsets are committed by the reader as messages are read.
type RecordSource struct {
	reader messageReader
	logger *slog.Logger
}

// NewRecordSource creates a reader for the configured topic and group.
func NewRecordSource(cfg SourceConfig, logger *slog.Logger) (*RecordSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	startOffset, err := startOffset(cfg.Offset)
	if err != nil {
		return nil, err
	}
	logger = logger.With("component", "kafka_source", "topic", cfg.Topic, "group", cfg.GroupID)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: startOffset,
		Dialer: &kafka.Dialer{
			ClientID:  cfg.ClientID,
			Timeout:   dialTimeout,
			DualStack: true,
		},
		Logger:      debugLogger(logger),
		ErrorLogger: errorLogger(logger),
	})

	return &RecordSource{reader: reader, logger: logger}, nil
}

func startOffset(policy domain.OffsetPolicy) (int64, error) {
	switch policy {
	case domain.OffsetEarliest:
		return kafka.FirstOffset, nil
	case domain.OffsetLatest:
		return kafka.LastOffset, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidOffsetPolicy, policy)
	}
}

// Poll reads messages until max is reached or timeout elapses. The timeout
// elapsing ends the poll normally; cancellation of ctx is returned as an error.
func (s *RecordSource) Poll(ctx context.Context, max int, timeout time.Duration) ([]domain.Record, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var records []domain.Record
	for max <= 0 || len(records) < max {
		msg, err := s.reader.ReadMessage(pollCtx)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return records, fmt.Errorf("failed to read from kafka: %w", err)
		}
		records = append(records, toRecord(msg))
	}

	s.logger.Debug("kafka poll finished", "count", len(records))
	return records, nil
}

// Close leaves the consumer group and closes the connection.
func (s *RecordSource) Close() error {
	if err := s.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}

func toRecord(msg kafka.Message) domain.Record {
	return domain.Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		ID:        fmt.Sprintf("%d-%d", msg.Partition, msg.Offset),
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Time,
	}
}

// SinkConfig describes the producer side of a Kafka connection.
type SinkConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// RecordSink implements domain.RecordSink with an asynchronous kafka.Writer.
// Publish returns once the message is queued; delivery errors are only logged.
type RecordSink struct {
	writer messageWriter
	logger *slog.Logger
}

// NewRecordSink creates a writer for the configured topic, creating the topic on first use.
func NewRecordSink(cfg SinkConfig, logger *slog.Logger) (*RecordSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	logger = logger.With("component", "kafka_sink", "topic", cfg.Topic)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Transport: &kafka.Transport{
			ClientID:    cfg.ClientID,
			DialTimeout: dialTimeout,
		},
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to deliver messages", "count", len(messages), "error", err)
			}
		},
		Logger:      debugLogger(logger),
		ErrorLogger: errorLogger(logger),
	}

	return &RecordSink{writer: writer, logger: logger}, nil
}

// Publish queues one unkeyed message.
func (s *RecordSink) Publish(ctx context.Context, value []byte) error {
	if err := s.writer.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		return fmt.Errorf("failed to write to kafka: %w", err)
	}
	return nil
}

// Close flushes queued messages and closes the connection.
func (s *RecordSink) Close() error {
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func debugLogger(logger *slog.Logger) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(msg, args...))
	})
}

func errorLogger(logger *slog.Logger) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		logger.Error(fmt.Sprintf(msg, args...))
	})
}
