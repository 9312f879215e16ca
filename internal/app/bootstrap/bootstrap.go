package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	workerapp "pollledger/contexts/governance/poll-ledger/application/workers"
	"pollledger/internal/platform/config"
	"pollledger/internal/platform/httpserver"
	"pollledger/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server *httpserver.Server
	ledger *Ledger
	relay  *workerapp.OutboxRelay
	logger *slog.Logger
}

type WorkerApp struct {
	ledger *Ledger
	relay  workerapp.OutboxRelay
	logger *slog.Logger
}

// NewLogger builds the process logger: JSON on stderr at the configured
// level.
func NewLogger(cfg config.Config, process string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler).With("service", cfg.ServiceName, "process", process)
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "api")
	registry := newRegistry()

	ledger, err := OpenLedger(cfg, registry, logger)
	if err != nil {
		return nil, err
	}

	app := &APIApp{
		server: httpserver.New(ledger.Module, registry, logger, normalizeAddr(cfg.HTTPPort)),
		ledger: ledger,
		logger: logger,
	}
	// Memory and leveldb ledgers are owned by this process, so nobody else
	// can drain their outbox.
	if cfg.Outbox.EmbeddedRelay || ledger.Postgres == nil {
		relay, err := newRelay(cfg, ledger, logger)
		if err != nil {
			_ = ledger.Close()
			return nil, err
		}
		app.relay = &relay
	}
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "worker")
	if cfg.Ledger.Backend != config.BackendPostgres {
		return nil, errors.New("worker requires LEDGER_BACKEND=postgres; other backends relay inside the api process")
	}

	ledger, err := OpenLedger(cfg, newRegistry(), logger)
	if err != nil {
		return nil, err
	}
	relay, err := newRelay(cfg, ledger, logger)
	if err != nil {
		_ = ledger.Close()
		return nil, err
	}
	return &WorkerApp{
		ledger: ledger,
		relay:  relay,
		logger: logger,
	}, nil
}

func newRelay(cfg config.Config, ledger *Ledger, logger *slog.Logger) (workerapp.OutboxRelay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return workerapp.OutboxRelay{}, err
	}
	logger.Info("outbox relay configured",
		"event", "bootstrap_outbox_relay_configured",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"brokers", kafka.Brokers(),
		"batch_size", cfg.Outbox.BatchSize,
		"poll_interval", cfg.Outbox.PollInterval.String(),
	)
	return workerapp.OutboxRelay{
		Outbox:       ledger.Outbox,
		Publisher:    kafka,
		Clock:        ledger.Clock,
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		Logger:       logger,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down. The
// embedded relay, when configured, runs alongside the server.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"backend", a.ledger.Backend,
		"embedded_relay", a.relay != nil,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.relay != nil {
		group.Go(func() error {
			return a.relay.Run(groupCtx)
		})
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.ledger.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"backend", w.ledger.Backend,
	)
	return w.relay.Run(ctx)
}

func (w *WorkerApp) Close() error {
	return w.ledger.Close()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
