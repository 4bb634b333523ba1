package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/V4T54L/log-tracer/internal/domain"
)

const (
	TransportKafka = "kafka"
	TransportRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"LOG_FILE"`
	LogMaxSizeMB    int           `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups   int           `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays   int           `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
	LogCompress     bool          `env:"LOG_COMPRESS" envDefault:"false"`
	Transport       string        `env:"TRANSPORT" envDefault:"kafka"`
	BrokerHost      string        `env:"BROKER_HOST" envDefault:"localhost"`
	BrokerPort      string        `env:"BROKER_PORT" envDefault:"9092"`
	Topic           string        `env:"TOPIC" envDefault:"logs"`
	GroupID         string        `env:"GROUP_ID" envDefault:"log-tracer"`
	Offset          string        `env:"OFFSET" envDefault:"earliest"`
	ClientID        string        `env:"CLIENT_ID"`
	MaxRecords      int           `env:"MAX_RECORDS" envDefault:"500"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT" envDefault:"3s"`
	ProduceInterval time.Duration `env:"PRODUCE_INTERVAL" envDefault:"500ms"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
	PushgatewayURL  string        `env:"PUSHGATEWAY_URL"`
	RedactMDCKeys   []string      `env:"REDACT_MDC_KEYS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = NewClientID()
	}

	return cfg, nil
}

// NewClientID returns a unique client identifier for a consumer or producer instance.
func NewClientID() string {
	return "log-tracer-" + uuid.NewString()
}

// BrokerAddr is the host:port pair of the broker.
func (c *Config) BrokerAddr() string {
	return net.JoinHostPort(c.BrokerHost, c.BrokerPort)
}

// OffsetPolicy returns the parsed starting-offset policy.
func (c *Config) OffsetPolicy() (domain.OffsetPolicy, error) {
	return domain.ParseOffsetPolicy(c.Offset)
}

// Validate checks the values flags and environment can get wrong.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Transport) {
	case TransportKafka, TransportRedis:
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownTransport, c.Transport)
	}
	if _, err := c.OffsetPolicy(); err != nil {
		return err
	}
	if c.BrokerHost == "" || c.BrokerPort == "" {
		return fmt.Errorf("broker host and port are required")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll timeout must be positive, got %s", c.PollTimeout)
	}
	if c.ProduceInterval <= 0 {
		return fmt.Errorf("produce interval must be positive, got %s", c.ProduceInterval)
	}
	return nil
}
