package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/V4T54L/log-tracer/internal/adapter/metrics"
	"github.com/V4T54L/log-tracer/internal/domain"
)

const DefaultProduceInterval = 500 * time.Millisecond

// ProduceEventsUseCase publishes generated events to a topic at a fixed cadence.
type ProduceEventsUseCase struct {
	sink      domain.RecordSink
	generator *EventGenerator
	logger    *slog.Logger
	metrics   *metrics.ProducerMetrics
	interval  time.Duration
}

// NewProduceEventsUseCase creates a new producer use case. A non-positive interval
// means DefaultProduceInterval.
func NewProduceEventsUseCase(sink domain.RecordSink, generator *EventGenerator, logger *slog.Logger, m *metrics.ProducerMetrics, interval time.Duration) *ProduceEventsUseCase {
	if interval <= 0 {
		interval = DefaultProduceInterval
	}
	return &ProduceEventsUseCase{
		sink:      sink,
		generator: generator,
		logger:    logger.With("component", "produce_events"),
		metrics:   m,
		interval:  interval,
	}
}

// Run generates and publishes events until ctx is cancelled, then closes the sink
// and returns the number of events generated. Publish failures are logged and
// counted but never retried. The returned error is only ever a failure to close the sink.
func (uc *ProduceEventsUseCase) Run(ctx context.Context) (int, error) {
	limiter := rate.NewLimiter(rate.Every(uc.interval), 1)
	generated := 0

	uc.logger.Info("starting event generation", "interval", uc.interval)
	for {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		uc.publish(ctx, uc.generator.Next(generated))
		generated++
	}

	closeErr := uc.sink.Close()
	if closeErr != nil {
		uc.logger.Error("failed to close producer", "error", closeErr)
	}
	uc.logger.Info("event generation stopped", "generated", generated)
	return generated, closeErr
}

func (uc *ProduceEventsUseCase) publish(ctx context.Context, event domain.LogEvent) {
	ctx, span := otel.Tracer("produce-events").Start(ctx, "Publish")
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		uc.metrics.PublishErrors.Inc()
		uc.logger.Error("failed to marshal log event", "error", err)
		return
	}

	uc.logger.Info("generating log event", "payload", string(payload))
	if err := uc.sink.Publish(ctx, payload); err != nil {
		span.RecordError(err)
		uc.metrics.PublishErrors.Inc()
		if !errors.Is(err, context.Canceled) {
			uc.logger.Warn("failed to publish log event", "error", err)
		}
		return
	}
	uc.metrics.EventsPublished.Inc()
}
