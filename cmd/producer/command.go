package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/V4T54L/log-tracer/internal/adapter/api"
	"github.com/V4T54L/log-tracer/internal/adapter/metrics"
	"github.com/V4T54L/log-tracer/internal/adapter/repository"
	"github.com/V4T54L/log-tracer/internal/pkg/config"
	"github.com/V4T54L/log-tracer/internal/pkg/logger"
	"github.com/V4T54L/log-tracer/internal/pkg/shutdown"
	"github.com/V4T54L/log-tracer/internal/usecase"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "producer",
		Short: "Publish synthetic log events to a topic",
		Long: `Generate random log events at a fixed interval and publish them to a topic
until interrupted, then report how many were generated.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducer(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Transport, "transport", cfg.Transport, "broker transport: kafka or redis")
	flags.StringVar(&cfg.BrokerHost, "broker-host", cfg.BrokerHost, "broker hostname")
	flags.StringVar(&cfg.BrokerPort, "broker-port", cfg.BrokerPort, "broker port")
	flags.StringVarP(&cfg.Topic, "topic", "t", cfg.Topic, "topic to publish to")
	flags.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "client identifier")
	flags.DurationVar(&cfg.ProduceInterval, "interval", cfg.ProduceInterval, "time between generated events")

	return cmd
}

func runProducer(cmd *cobra.Command, cfg *config.Config) error {
	log, closer := logger.NewWithFile(cfg.LogLevel, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	// --- Graceful Shutdown Context ---
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	sink, err := repository.OpenSink(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to broker", "transport", cfg.Transport, "addr", cfg.BrokerAddr(), "error", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewProducerMetrics(reg)

	adminServer := startAdminServer(cfg.MetricsAddr, reg, log)

	uc := usecase.NewProduceEventsUseCase(sink, usecase.NewEventGenerator(nil, nil), log, m, cfg.ProduceInterval)

	log.Info("producing test data", "transport", cfg.Transport, "addr", cfg.BrokerAddr(), "topic", cfg.Topic, "interval", cfg.ProduceInterval)

	type result struct {
		generated int
		err       error
	}
	done := make(chan result, 1)
	go func() {
		generated, err := uc.Run(ctx)
		done <- result{generated: generated, err: err}
	}()
	res := <-done

	if adminServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Error("admin server shutdown failed", "error", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "### Generated %d message(s)\n", res.generated)
	return res.err
}

// startAdminServer serves /metrics and /health on addr. An empty addr disables it.
func startAdminServer(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewAdminRouter(reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting admin & metrics server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()
	return server
}
