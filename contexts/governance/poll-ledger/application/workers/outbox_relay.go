package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "pollledger/contexts/governance/poll-ledger/application"
	"pollledger/contexts/governance/poll-ledger/ports"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 2 * time.Second
)

// OutboxRelay moves pending ledger events onto the bus. A row is marked
// published only after the publisher accepted it, so delivery is
// at-least-once.
type OutboxRelay struct {
	Outbox       ports.OutboxRepository
	Publisher    ports.EventPublisher
	Clock        ports.Clock
	BatchSize    int
	PollInterval time.Duration
	Logger       *slog.Logger
}

// RunOnce relays one batch and reports how many rows were published. It
// stops at the first failure and leaves the rest for the next cycle.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("poll ledger outbox list failed",
			"event", "poll_ledger_outbox_list_failed",
			"module", "governance/poll-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("poll ledger outbox empty",
			"event", "poll_ledger_outbox_relay_noop",
			"module", "governance/poll-ledger",
			"layer", "worker",
		)
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("poll ledger outbox decode failed",
				"event", "poll_ledger_outbox_decode_failed",
				"module", "governance/poll-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, fmt.Errorf("decode outbox row %s: %w", row.OutboxID, err)
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("poll ledger outbox publish failed",
				"event", "poll_ledger_outbox_publish_failed",
				"module", "governance/poll-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"event_type", topic,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
			logger.Error("poll ledger outbox mark published failed",
				"event", "poll_ledger_outbox_mark_failed",
				"module", "governance/poll-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("poll ledger outbox relayed",
		"event", "poll_ledger_outbox_relay_completed",
		"module", "governance/poll-ledger",
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

// Run drives RunOnce until ctx is cancelled. Cycle failures are logged by
// RunOnce and retried on the next tick.
func (r OutboxRelay) Run(ctx context.Context) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && errors.Is(err, context.Canceled) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
