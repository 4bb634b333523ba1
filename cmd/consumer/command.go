package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/V4T54L/log-tracer/internal/adapter/metrics"
	"github.com/V4T54L/log-tracer/internal/adapter/pii"
	"github.com/V4T54L/log-tracer/internal/adapter/repository"
	"github.com/V4T54L/log-tracer/internal/domain"
	"github.com/V4T54L/log-tracer/internal/logformat"
	"github.com/V4T54L/log-tracer/internal/pkg/config"
	"github.com/V4T54L/log-tracer/internal/pkg/logger"
	"github.com/V4T54L/log-tracer/internal/pkg/shutdown"
	"github.com/V4T54L/log-tracer/internal/usecase"
)

const pushJob = "log_tracer_consumer"

// filterFlags holds the raw filter arguments until they are parsed.
type filterFlags struct {
	start string
	end   string
	appID string
	env   string
	host  string
}

func (f filterFlags) parse() (domain.Filter, error) {
	start, err := domain.ParseTimestamp(f.start)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := domain.ParseTimestamp(f.end)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("invalid --end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return domain.Filter{}, fmt.Errorf("--end %s is before --start %s", f.end, f.start)
	}
	return domain.Filter{Start: start, End: end, AppID: f.appID, Env: f.env, Host: f.host}, nil
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "consumer",
		Short: "Read one batch of log events from a topic",
		Long: `Poll a topic once, decode each record as a log event, keep the events matching
the time range, application, environment and host filters, and print them as log lines.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsumer(cmd, cfg, filter)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Transport, "transport", cfg.Transport, "broker transport: kafka or redis")
	flags.StringVar(&cfg.BrokerHost, "broker-host", cfg.BrokerHost, "broker hostname")
	flags.StringVar(&cfg.BrokerPort, "broker-port", cfg.BrokerPort, "broker port")
	flags.StringVarP(&cfg.Topic, "topic", "t", cfg.Topic, "topic to read")
	flags.StringVarP(&cfg.GroupID, "group", "g", cfg.GroupID, "consumer group")
	flags.StringVar(&cfg.Offset, "offset", cfg.Offset, "where a new group starts: earliest or latest")
	flags.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "client identifier")
	flags.IntVarP(&cfg.MaxRecords, "max-records", "n", cfg.MaxRecords, "upper bound on records retrieved by the poll (0 for no bound)")
	flags.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "how long the single poll waits for records")
	flags.StringVar(&filter.start, "start", "", "keep events at or after this time (RFC 3339)")
	flags.StringVar(&filter.end, "end", "", "keep events at or before this time (RFC 3339)")
	flags.StringVar(&filter.appID, "app-id", "", "keep events of this application (case-insensitive)")
	flags.StringVar(&filter.env, "env", "", "keep events of this environment (case-insensitive)")
	flags.StringVar(&filter.host, "host", "", "keep events from this host (case-insensitive)")

	return cmd
}

func runConsumer(cmd *cobra.Command, cfg *config.Config, flags filterFlags) error {
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
	filter, err := flags.parse()
	if err != nil {
		log.Error("invalid filter", "error", err)
		return err
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	source, err := repository.OpenSource(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to broker", "transport", cfg.Transport, "addr", cfg.BrokerAddr(), "error", err)
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("failed to close consumer", "error", err)
		}
	}()

	log.Info("reading topic", "transport", cfg.Transport, "addr", cfg.BrokerAddr(), "topic", cfg.Topic,
		"group", cfg.GroupID, "offset", cfg.Offset, "client_id", cfg.ClientID)

	redactor := pii.NewRedactor(cfg.RedactMDCKeys, log)
	reg := prometheus.NewRegistry()
	m := metrics.NewConsumerMetrics(reg)
	uc := usecase.NewReadEventsUseCase(source, redactor, log, m, cfg.Topic, cfg.PollTimeout)

	events, err := uc.ReadEvents(ctx, filter, cfg.MaxRecords)
	pushMetrics(cfg.PushgatewayURL, reg, cfg.Topic, log)
	if err != nil {
		log.Error("failed to read events", "error", err)
		return err
	}

	out := cmd.OutOrStdout()
	for _, event := range events {
		fmt.Fprintln(out, logformat.Format(event))
	}
	log.Info("consumer finished", "events", len(events))
	return nil
}

// pushMetrics sends the consumer counters to a Pushgateway. An empty url disables it.
func pushMetrics(url string, gatherer prometheus.Gatherer, topic string, log *slog.Logger) {
	if url == "" {
		return
	}
	err := push.New(url, pushJob).
		Gatherer(gatherer).
		Grouping("topic", topic).
		Push()
	if err != nil {
		log.Warn("failed to push metrics", "url", url, "error", err)
		return
	}
	log.Debug("pushed metrics", "url", url, "job", pushJob)
}
