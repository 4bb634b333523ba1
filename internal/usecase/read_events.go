package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/V4T54L/log-tracer/internal/adapter/metrics"
	"github.com/V4T54L/log-tracer/internal/adapter/pii"
	"github.com/V4T54L/log-tracer/internal/domain"
)

const DefaultPollTimeout = 3 * time.Second

// ReadEventsUseCase polls a topic once and turns the records into filtered log events.
type ReadEventsUseCase struct {
	source      domain.RecordSource
	redactor    *pii.Redactor
	logger      *slog.Logger
	metrics     *metrics.ConsumerMetrics
	topic       string
	pollTimeout time.Duration
}

// NewReadEventsUseCase creates a new use case for reading events.
// A nil redactor leaves events untouched; a non-positive timeout means DefaultPollTimeout.
func NewReadEventsUseCase(source domain.RecordSource, redactor *pii.Redactor, logger *slog.Logger, m *metrics.ConsumerMetrics, topic string, pollTimeout time.Duration) *ReadEventsUseCase {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &ReadEventsUseCase{
		source:      source,
		redactor:    redactor,
		logger:      logger.With("component", "read_events"),
		metrics:     m,
		topic:       topic,
		pollTimeout: pollTimeout,
	}
}

// ReadEvents performs exactly one bounded poll of at most maxRecords records,
// decodes each payload and returns the events that pass the filter in arrival order.
// An empty poll is not an error. Records that fail to decode are logged and skipped.
func (uc *ReadEventsUseCase) ReadEvents(ctx context.Context, filter domain.Filter, maxRecords int) ([]domain.LogEvent, error) {
	ctx, span := otel.Tracer("read-events").Start(ctx, "ReadEvents")
	defer span.End()

	records, err := uc.source.Poll(ctx, maxRecords, uc.pollTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to poll topic %s: %w", uc.topic, err)
	}

	events := make([]domain.LogEvent, 0, len(records))
	if len(records) == 0 {
		uc.metrics.EmptyPolls.Inc()
		uc.logger.Warn("no records found in topic", "topic", uc.topic)
		return events, nil
	}

	uc.metrics.RecordsPolled.Add(float64(len(records)))
	uc.logger.Info("polled records from topic", "topic", uc.topic, "count", len(records))

	for _, rec := range records {
		event, err := decodeRecord(rec)
		if err != nil {
			uc.metrics.DecodeErrors.Inc()
			uc.logger.Warn("failed to decode record, skipping", "partition", rec.Partition, "offset", rec.Offset, "id", rec.ID, "error", err)
			continue
		}
		if !filter.Match(event) {
			continue
		}
		if uc.redactor != nil {
			event = uc.redactor.Redact(event)
		}
		events = append(events, event)
	}

	uc.metrics.EventsMatched.Add(float64(len(events)))
	span.SetAttributes(
		attribute.Int("records.polled", len(records)),
		attribute.Int("events.matched", len(events)),
	)
	uc.logger.Debug("filtered polled records", "polled", len(records), "matched", len(events))
	return events, nil
}

// Invalid UTF-8 inside JSON strings decodes as U+FFFD rather than failing the record.
func decodeRecord(rec domain.Record) (domain.LogEvent, error) {
	event, err := domain.ParseLogEvent(rec.Value)
	if err != nil {
		return domain.LogEvent{}, err
	}
	if event.KafkaTimestamp.IsZero() {
		event.KafkaTimestamp = rec.Time
	}
	return event, nil
}
