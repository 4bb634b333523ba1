package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "log_tracer"

// ConsumerMetrics holds the Prometheus metrics of the topic consumer.
type ConsumerMetrics struct {
	RecordsPolled prometheus.Counter
	EventsMatched prometheus.Counter
	DecodeErrors  prometheus.Counter
	EmptyPolls    prometheus.Counter
}

// ProducerMetrics holds the Prometheus metrics of the test-data producer.
type ProducerMetrics struct {
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewConsumerMetrics initializes and registers the consumer metrics with reg.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	factory := promauto.With(reg)
	return &ConsumerMetrics{
		RecordsPolled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "records_polled_total",
			Help:      "Total number of records returned by topic polls.",
		}),
		EventsMatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "events_matched_total",
			Help:      "Total number of decoded events that passed the filter.",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "decode_errors_total",
			Help:      "Total number of records skipped because their payload could not be decoded.",
		}),
		EmptyPolls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "empty_polls_total",
			Help:      "Total number of polls that returned no records.",
		}),
	}
}

// NewProducerMetrics initializes and registers the producer metrics with reg.
func NewProducerMetrics(reg prometheus.Registerer) *ProducerMetrics {
	factory := promauto.With(reg)
	return &ProducerMetrics{
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "producer",
			Name:      "events_published_total",
			Help:      "Total number of generated events handed to the broker client.",
		}),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "producer",
			Name:      "publish_errors_total",
			Help:      "Total number of publish calls that returned an error.",
		}),
	}
}
