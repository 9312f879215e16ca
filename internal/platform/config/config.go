package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendMemory   = "memory"
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" env-default:"pollledger"`
	HTTPPort     string   `env:"HTTP_PORT" env-default:"8080"`
	LogLevel     string   `env:"LOG_LEVEL" env-default:"info"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`

	Ledger LedgerConfig
	Outbox OutboxConfig
}

type LedgerConfig struct {
	Backend                   string `env:"LEDGER_BACKEND" env-default:"memory"`
	Path                      string `env:"LEDGER_PATH" env-default:"data/ledger"`
	DescriptionMaxLength      int    `env:"DESCRIPTION_MAX_LENGTH" env-default:"280"`
	CandidateNameMaxLength    int    `env:"CANDIDATE_NAME_MAX_LENGTH" env-default:"100"`
	EnforceVotingWindow       bool   `env:"ENFORCE_VOTING_WINDOW" env-default:"true"`
	EnforceRegistrationWindow bool   `env:"ENFORCE_REGISTRATION_WINDOW" env-default:"true"`
}

type OutboxConfig struct {
	EmbeddedRelay bool          `env:"EMBEDDED_OUTBOX_RELAY" env-default:"true"`
	PollInterval  time.Duration `env:"OUTBOX_POLL_INTERVAL" env-default:"2s"`
	BatchSize     int           `env:"OUTBOX_BATCH_SIZE" env-default:"100"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	cfg.Ledger.Backend = strings.ToLower(strings.TrimSpace(cfg.Ledger.Backend))
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = BackendMemory
	}
	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, value := range cfg.KafkaBrokers {
		if value = strings.TrimSpace(value); value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	cfg.KafkaBrokers = brokers
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Ledger.Backend {
	case BackendMemory, BackendLevelDB:
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required for ledger backend %q", c.Ledger.Backend)
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if c.Ledger.DescriptionMaxLength <= 0 || c.Ledger.CandidateNameMaxLength <= 0 {
		return fmt.Errorf("length limits must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Usage describes every variable Load reads.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
