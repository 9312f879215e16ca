package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"

	"github.com/google/uuid"
)

type candidateKey struct {
	pollID uint64
	index  uint64
}

type voterKey struct {
	pollID  uint64
	voterID string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

// Store keeps the ledger in process memory. Atomic units are serialized by
// a single writer lock and staged in an overlay that is merged on success.
type Store struct {
	mu sync.RWMutex

	polls      map[uint64]entities.Poll
	candidates map[candidateKey]entities.Candidate
	voters     map[voterKey]entities.Voter
	outbox     map[string]outboxRecord
	outboxSeq  uint64
}

func NewStore() *Store {
	return &Store{
		polls:      make(map[uint64]entities.Poll),
		candidates: make(map[candidateKey]entities.Candidate),
		voters:     make(map[voterKey]entities.Voter),
		outbox:     make(map[string]outboxRecord),
	}
}

// SeedPoll stores poll as-is, bypassing every rule. Used to stage counters
// that cannot be reached through the public operations.
func (s *Store) SeedPoll(poll entities.Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.PollID] = poll
}

func (s *Store) SeedCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidateKey{pollID: candidate.PollID, index: candidate.Index}] = candidate
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, records ports.Records) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unit := &unit{
		store:      s,
		polls:      make(map[uint64]entities.Poll),
		candidates: make(map[candidateKey]entities.Candidate),
		voters:     make(map[voterKey]entities.Voter),
		outbox:     make(map[string]ports.OutboxMessage),
	}
	if err := fn(ctx, unit); err != nil {
		return err
	}
	unit.commit()
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		items = append(items, poll)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PollID < items[j].PollID
	})
	return items, nil
}

func (s *Store) ListCandidates(_ context.Context, pollID uint64) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for key, candidate := range s.candidates {
		if key.pollID == pollID {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Index < items[j].Index
	})
	return items, nil
}

func (s *Store) GetVoter(_ context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[voterKey{pollID: pollID, voterID: voterID}]
	return voter, ok, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// unit is the Records view of one Atomic call. The caller holds s.mu.
type unit struct {
	store *Store

	polls      map[uint64]entities.Poll
	candidates map[candidateKey]entities.Candidate
	voters     map[voterKey]entities.Voter
	outbox     map[string]ports.OutboxMessage
	outboxIDs  []string
}

func (u *unit) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	if poll, ok := u.polls[pollID]; ok {
		return poll, nil
	}
	if poll, ok := u.store.polls[pollID]; ok {
		return poll, nil
	}
	return entities.Poll{}, domainerrors.ErrPollNotFound
}

func (u *unit) CreatePoll(ctx context.Context, poll entities.Poll) error {
	if _, err := u.GetPoll(ctx, poll.PollID); err == nil {
		return domainerrors.ErrPollAlreadyExists
	}
	u.polls[poll.PollID] = poll
	return nil
}

func (u *unit) UpdatePoll(ctx context.Context, poll entities.Poll) error {
	if _, err := u.GetPoll(ctx, poll.PollID); err != nil {
		return err
	}
	u.polls[poll.PollID] = poll
	return nil
}

func (u *unit) GetCandidate(_ context.Context, pollID uint64, index uint64) (entities.Candidate, error) {
	key := candidateKey{pollID: pollID, index: index}
	if candidate, ok := u.candidates[key]; ok {
		return candidate, nil
	}
	if candidate, ok := u.store.candidates[key]; ok {
		return candidate, nil
	}
	return entities.Candidate{}, domainerrors.ErrCandidateNotFound
}

func (u *unit) CreateCandidate(ctx context.Context, candidate entities.Candidate) error {
	if _, err := u.GetCandidate(ctx, candidate.PollID, candidate.Index); err == nil {
		return domainerrors.ErrConflict
	}
	u.candidates[candidateKey{pollID: candidate.PollID, index: candidate.Index}] = candidate
	return nil
}

func (u *unit) UpdateCandidate(ctx context.Context, candidate entities.Candidate) error {
	if _, err := u.GetCandidate(ctx, candidate.PollID, candidate.Index); err != nil {
		return err
	}
	u.candidates[candidateKey{pollID: candidate.PollID, index: candidate.Index}] = candidate
	return nil
}

func (u *unit) GetVoter(_ context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	key := voterKey{pollID: pollID, voterID: voterID}
	if voter, ok := u.voters[key]; ok {
		return voter, true, nil
	}
	voter, ok := u.store.voters[key]
	return voter, ok, nil
}

func (u *unit) PutVoter(ctx context.Context, voter entities.Voter) error {
	existing, found, err := u.GetVoter(ctx, voter.PollID, voter.VoterID)
	if err != nil {
		return err
	}
	if found && existing.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}
	u.voters[voterKey{pollID: voter.PollID, voterID: voter.VoterID}] = voter
	return nil
}

func (u *unit) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	existing, staged := u.outbox[outboxID]
	if !staged {
		if row, ok := u.store.outbox[outboxID]; ok {
			existing, staged = row.message, true
		}
	}
	if staged {
		if !bytes.Equal(existing.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	u.outbox[outboxID] = ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    createdAt,
	}
	u.outboxIDs = append(u.outboxIDs, outboxID)
	return nil
}

func (u *unit) commit() {
	s := u.store
	for id, poll := range u.polls {
		s.polls[id] = poll
	}
	for key, candidate := range u.candidates {
		s.candidates[key] = candidate
	}
	for key, voter := range u.voters {
		s.voters[key] = voter
	}
	for _, id := range u.outboxIDs {
		s.outboxSeq++
		s.outbox[id] = outboxRecord{message: u.outbox[id], seq: s.outboxSeq}
	}
}
