// Package repository selects and opens the broker transport named in the configuration.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/V4T54L/log-tracer/internal/adapter/repository/kafka"
	"github.com/V4T54L/log-tracer/internal/adapter/repository/redis"
	"github.com/V4T54L/log-tracer/internal/domain"
	"github.com/V4T54L/log-tracer/internal/pkg/config"
)

// OpenSource connects a consumer for cfg.Topic on the configured transport.
func OpenSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.RecordSource, error) {
	offset, err := cfg.OffsetPolicy()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Transport) {
	case config.TransportKafka:
		source, err := kafka.NewRecordSource(kafka.SourceConfig{
			Brokers:  []string{cfg.BrokerAddr()},
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			ClientID: cfg.ClientID,
			Offset:   offset,
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.TransportRedis:
		client, err := connectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		source, err := redis.NewStreamSource(ctx, client, logger, cfg.Topic, cfg.GroupID, cfg.ClientID, offset)
		if err != nil {
			client.Close()
			return nil, err
		}
		return source, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTransport, cfg.Transport)
	}
}

// OpenSink connects a producer for cfg.Topic on the configured transport.
func OpenSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.RecordSink, error) {
	switch strings.ToLower(cfg.Transport) {
	case config.TransportKafka:
		sink, err := kafka.NewRecordSink(kafka.SinkConfig{
			Brokers:  []string{cfg.BrokerAddr()},
			Topic:    cfg.Topic,
			ClientID: cfg.ClientID,
		}, logger)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.TransportRedis:
		client, err := connectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return redis.NewStreamSink(client, logger, cfg.Topic), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTransport, cfg.Transport)
	}
}

func connectRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:       cfg.BrokerAddr(),
		ClientName: cfg.ClientID,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.BrokerAddr(), err)
	}
	return client, nil
}
