package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pollledger "pollledger/contexts/governance/poll-ledger"
	"pollledger/contexts/governance/poll-ledger/adapters/kvstore"
	"pollledger/contexts/governance/poll-ledger/adapters/memory"
	"pollledger/contexts/governance/poll-ledger/adapters/metrics"
	postgresadapter "pollledger/contexts/governance/poll-ledger/adapters/postgres"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
	"pollledger/internal/platform/config"
	"pollledger/internal/platform/db"
	"pollledger/internal/platform/kvdb"
)

// Ledger is one opened storage backend plus the module wired over it.
type Ledger struct {
	Backend  string
	Module   pollledger.Module
	Outbox   ports.OutboxRepository
	Clock    ports.Clock
	Postgres *db.Postgres

	closer func() error
}

// OpenLedger opens the backend named by cfg.Ledger.Backend. The postgres
// backend is migrated up before use.
func OpenLedger(cfg config.Config, registry *prometheus.Registry, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("register ledger metrics: %w", err)
	}

	deps := pollledger.Dependencies{
		Limits: rules.Limits{
			MaxDescriptionLength:   cfg.Ledger.DescriptionMaxLength,
			MaxCandidateNameLength: cfg.Ledger.CandidateNameMaxLength,
		},
		Window: rules.WindowPolicy{
			EnforceVoting:       cfg.Ledger.EnforceVotingWindow,
			EnforceRegistration: cfg.Ledger.EnforceRegistrationWindow,
		},
		Recorder: recorder,
		Logger:   logger,
	}

	out := &Ledger{Backend: cfg.Ledger.Backend}
	switch cfg.Ledger.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		deps.Ledger, deps.Reader, deps.Clock, deps.IDGen = store, store, store, store
		out.Outbox, out.Clock = store, store
		out.closer = func() error { return nil }
		out.Module = pollledger.NewModule(deps)
		out.Module.Store = store

	case config.BackendLevelDB:
		base, err := kvdb.Open(kvdb.EngineLevelDB, cfg.Ledger.Path, registry, logger)
		if err != nil {
			return nil, err
		}
		ledger, err := kvstore.New(base, logger)
		if err != nil {
			_ = base.Close()
			return nil, err
		}
		deps.Ledger, deps.Reader, deps.Clock, deps.IDGen = ledger, ledger, ledger, ledger
		out.Outbox, out.Clock = ledger, ledger
		out.closer = ledger.Close
		out.Module = pollledger.NewModule(deps)

	case config.BackendPostgres:
		pg, err := db.Connect(cfg.PostgresDSN, db.Options{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := pg.SQL()
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		status, err := postgresadapter.Migrate(sqlDB, postgresadapter.MigrateUp, 0)
		if err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrate poll ledger schema: %w", err)
		}
		logger.Info("poll ledger schema ready",
			"event", "bootstrap_schema_ready",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"schema_version", status.Version,
		)
		repo := postgresadapter.NewRepository(pg.DB, logger)
		deps.Ledger, deps.Reader, deps.Clock, deps.IDGen = repo, repo, repo, repo
		out.Outbox, out.Clock = repo, repo
		out.Postgres = pg
		out.closer = pg.Close
		out.Module = pollledger.NewModule(deps)

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
	return out, nil
}

func (l *Ledger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer()
}
