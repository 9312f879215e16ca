// Package kvstore keeps the ledger in an avalanchego key-value database.
// Each record kind lives under its own prefix; an atomic unit is a
// versiondb layered over the base database and committed as one batch.
package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/google/uuid"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"
)

type Ledger struct {
	mu     sync.RWMutex
	db     database.Database
	codec  codec.Manager
	logger *slog.Logger
}

func New(db database.Database, logger *slog.Logger) (*Ledger, error) {
	manager, err := newCodec()
	if err != nil {
		return nil, fmt.Errorf("kvstore codec: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{db: db, codec: manager, logger: logger}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) Atomic(ctx context.Context, fn func(ctx context.Context, records ports.Records) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	vdb := versiondb.New(l.db)
	defer vdb.Abort()

	if err := fn(ctx, l.view(vdb)); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		l.logError("poll_ledger_kv_commit_failed", err)
		return err
	}
	return nil
}

func (l *Ledger) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view(l.db).getPoll(pollID)
}

func (l *Ledger) ListPolls(_ context.Context) ([]entities.Poll, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it := prefixdb.New(pollPrefix, l.db).NewIterator()
	defer it.Release()

	items := make([]entities.Poll, 0)
	for it.Next() {
		var record pollRecord
		if _, err := l.codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, err
		}
		items = append(items, record.entity())
	}
	return items, it.Error()
}

func (l *Ledger) ListCandidates(_ context.Context, pollID uint64) ([]entities.Candidate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it := prefixdb.New(candidatePrefix, l.db).NewIteratorWithPrefix(database.PackUInt64(pollID))
	defer it.Release()

	items := make([]entities.Candidate, 0)
	for it.Next() {
		var record candidateRecord
		if _, err := l.codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, err
		}
		items = append(items, record.entity())
	}
	return items, it.Error()
}

func (l *Ledger) GetVoter(_ context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view(l.db).getVoter(pollID, voterID)
}

// SeedPoll writes poll without any rule checks.
func (l *Ledger) SeedPoll(poll entities.Poll) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view(l.db).put(pollPrefix, pollKey(poll.PollID), fromPoll(poll))
}

func (l *Ledger) SeedCandidate(candidate entities.Candidate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view(l.db).put(candidatePrefix, candidateKey(candidate.PollID, candidate.Index), fromCandidate(candidate))
}

func (l *Ledger) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	view := l.view(l.db)
	it := prefixdb.New(pendingPrefix, l.db).NewIterator()
	defer it.Release()

	items := make([]ports.OutboxMessage, 0)
	for len(items) < limit && it.Next() {
		var record outboxRecord
		if err := view.get(outboxPrefix, it.Key(), &record); err != nil {
			return nil, err
		}
		items = append(items, record.message())
	}
	return items, it.Error()
}

func (l *Ledger) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	vdb := versiondb.New(l.db)
	defer vdb.Abort()
	view := l.view(vdb)

	seqKey, err := prefixdb.New(outboxIDPrefix, vdb).Get([]byte(strings.TrimSpace(outboxID)))
	if errors.Is(err, database.ErrNotFound) {
		return domainerrors.ErrConflict
	}
	if err != nil {
		return err
	}
	var record outboxRecord
	if err := view.get(outboxPrefix, seqKey, &record); err != nil {
		return err
	}
	record.Published = true
	record.PublishedAt = publishedAt.UTC().UnixNano()
	if err := view.put(outboxPrefix, seqKey, record); err != nil {
		return err
	}
	if err := prefixdb.New(pendingPrefix, vdb).Delete(seqKey); err != nil {
		return err
	}
	return vdb.Commit()
}

func (l *Ledger) Now() time.Time {
	return time.Now().UTC()
}

func (l *Ledger) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (l *Ledger) view(db database.Database) *records {
	return &records{
		codec:      l.codec,
		polls:      prefixdb.New(pollPrefix, db),
		candidates: prefixdb.New(candidatePrefix, db),
		voters:     prefixdb.New(voterPrefix, db),
		outbox:     prefixdb.New(outboxPrefix, db),
		outboxIDs:  prefixdb.New(outboxIDPrefix, db),
		pending:    prefixdb.New(pendingPrefix, db),
		meta:       prefixdb.New(metaPrefix, db),
	}
}

func (l *Ledger) logError(event string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/poll-ledger",
		"layer", "adapter",
		"adapter", "kvstore",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	l.logger.Error("poll ledger kv operation failed", fields...)
}

// records implements ports.Records over one set of prefixed databases.
type records struct {
	codec codec.Manager

	polls      database.Database
	candidates database.Database
	voters     database.Database
	outbox     database.Database
	outboxIDs  database.Database
	pending    database.Database
	meta       database.Database
}

func (r *records) dbFor(prefix []byte) database.Database {
	switch string(prefix) {
	case string(pollPrefix):
		return r.polls
	case string(candidatePrefix):
		return r.candidates
	case string(voterPrefix):
		return r.voters
	case string(outboxPrefix):
		return r.outbox
	default:
		return r.meta
	}
}

func (r *records) get(prefix []byte, key []byte, dest any) error {
	raw, err := r.dbFor(prefix).Get(key)
	if err != nil {
		return err
	}
	_, err = r.codec.Unmarshal(raw, dest)
	return err
}

func (r *records) put(prefix []byte, key []byte, value any) error {
	raw, err := r.codec.Marshal(codecVersion, value)
	if err != nil {
		return err
	}
	return r.dbFor(prefix).Put(key, raw)
}

func (r *records) getPoll(pollID uint64) (entities.Poll, error) {
	var record pollRecord
	err := r.get(pollPrefix, pollKey(pollID), &record)
	if errors.Is(err, database.ErrNotFound) {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	if err != nil {
		return entities.Poll{}, err
	}
	return record.entity(), nil
}

func (r *records) getVoter(pollID uint64, voterID string) (entities.Voter, bool, error) {
	var record voterRecord
	err := r.get(voterPrefix, voterKey(pollID, voterID), &record)
	if errors.Is(err, database.ErrNotFound) {
		return entities.Voter{}, false, nil
	}
	if err != nil {
		return entities.Voter{}, false, err
	}
	return record.entity(), true, nil
}

func (r *records) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	return r.getPoll(pollID)
}

func (r *records) CreatePoll(_ context.Context, poll entities.Poll) error {
	exists, err := r.polls.Has(pollKey(poll.PollID))
	if err != nil {
		return err
	}
	if exists {
		return domainerrors.ErrPollAlreadyExists
	}
	return r.put(pollPrefix, pollKey(poll.PollID), fromPoll(poll))
}

func (r *records) UpdatePoll(_ context.Context, poll entities.Poll) error {
	exists, err := r.polls.Has(pollKey(poll.PollID))
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrPollNotFound
	}
	return r.put(pollPrefix, pollKey(poll.PollID), fromPoll(poll))
}

func (r *records) GetCandidate(_ context.Context, pollID uint64, index uint64) (entities.Candidate, error) {
	var record candidateRecord
	err := r.get(candidatePrefix, candidateKey(pollID, index), &record)
	if errors.Is(err, database.ErrNotFound) {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	if err != nil {
		return entities.Candidate{}, err
	}
	return record.entity(), nil
}

func (r *records) CreateCandidate(_ context.Context, candidate entities.Candidate) error {
	key := candidateKey(candidate.PollID, candidate.Index)
	exists, err := r.candidates.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return domainerrors.ErrConflict
	}
	return r.put(candidatePrefix, key, fromCandidate(candidate))
}

func (r *records) UpdateCandidate(_ context.Context, candidate entities.Candidate) error {
	key := candidateKey(candidate.PollID, candidate.Index)
	exists, err := r.candidates.Has(key)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrCandidateNotFound
	}
	return r.put(candidatePrefix, key, fromCandidate(candidate))
}

func (r *records) GetVoter(_ context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	return r.getVoter(pollID, voterID)
}

func (r *records) PutVoter(_ context.Context, voter entities.Voter) error {
	existing, found, err := r.getVoter(voter.PollID, voter.VoterID)
	if err != nil {
		return err
	}
	if found && existing.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}
	return r.put(voterPrefix, voterKey(voter.PollID, voter.VoterID), fromVoter(voter))
}

// AppendOutbox stores the envelope under the next sequence number and
// marks it pending. Re-appending an identical envelope is a no-op.
func (r *records) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}

	seqKey, err := r.outboxIDs.Get([]byte(outboxID))
	switch {
	case err == nil:
		var existing outboxRecord
		if err := r.get(outboxPrefix, seqKey, &existing); err != nil {
			return err
		}
		if !bytes.Equal(existing.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	seq, err := database.GetUInt64(r.meta, outboxSeqKey)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	seq++
	if err := database.PutUInt64(r.meta, outboxSeqKey, seq); err != nil {
		return err
	}

	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	seqKey = database.PackUInt64(seq)
	if err := r.put(outboxPrefix, seqKey, outboxRecord{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    createdAt.UnixNano(),
	}); err != nil {
		return err
	}
	if err := r.outboxIDs.Put([]byte(outboxID), seqKey); err != nil {
		return err
	}
	return r.pending.Put(seqKey, []byte{database.BoolTrue})
}
