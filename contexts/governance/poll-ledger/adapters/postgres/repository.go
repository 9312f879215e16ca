package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	constraintPollsPkey      = "poll_ledger_polls_pkey"
	constraintCandidatesPkey = "poll_ledger_candidates_pkey"
	constraintVotersPkey     = "poll_ledger_voters_pkey"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Atomic runs fn inside one database transaction. Records read through the
// unit are locked FOR UPDATE until the transaction ends.
func (r *Repository) Atomic(ctx context.Context, fn func(ctx context.Context, records ports.Records) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txRecords{tx: tx, repo: r})
	})
	if err != nil && isUniqueViolation(err) {
		return uniqueViolationError(err)
	}
	return err
}

func (r *Repository) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).Where("poll_id = ?", pollID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_ledger_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	if err := r.db.WithContext(ctx).Order("poll_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("poll_ledger_repo_list_polls_failed", err)
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListCandidates(ctx context.Context, pollID uint64) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("idx ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_ledger_repo_list_candidates_failed", err, "poll_id", pollID)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetVoter(ctx context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	return getVoter(ctx, r.db, r, pollID, voterID, false)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_ledger_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("poll_ledger_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "governance/poll-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll ledger repository operation failed", fields...)
	return err
}

// txRecords is the Records view of one transaction.
type txRecords struct {
	tx   *gorm.DB
	repo *Repository
}

func (t *txRecords) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	var row pollModel
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("poll_id = ?", pollID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, t.repo.logError("poll_ledger_repo_lock_poll_failed", err, "poll_id", pollID)
	}
	return row.toEntity(), nil
}

func (t *txRecords) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := t.tx.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrPollAlreadyExists
		}
		return t.repo.logError("poll_ledger_repo_create_poll_failed", err, "poll_id", poll.PollID)
	}
	return nil
}

func (t *txRecords) UpdatePoll(ctx context.Context, poll entities.Poll) error {
	result := t.tx.WithContext(ctx).
		Model(&pollModel{}).
		Where("poll_id = ?", poll.PollID).
		Updates(map[string]any{
			"candidate_amount": poll.CandidateAmount,
			"votes_cast":       poll.VotesCast,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return t.repo.logError("poll_ledger_repo_update_poll_failed", result.Error, "poll_id", poll.PollID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPollNotFound
	}
	return nil
}

func (t *txRecords) GetCandidate(ctx context.Context, pollID uint64, index uint64) (entities.Candidate, error) {
	var row candidateModel
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("poll_id = ? AND idx = ?", pollID, index).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, t.repo.logError("poll_ledger_repo_lock_candidate_failed", err,
			"poll_id", pollID,
			"candidate_index", index,
		)
	}
	return row.toEntity(), nil
}

func (t *txRecords) CreateCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := t.tx.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return t.repo.logError("poll_ledger_repo_create_candidate_failed", err,
			"poll_id", candidate.PollID,
			"candidate_index", candidate.Index,
		)
	}
	return nil
}

func (t *txRecords) UpdateCandidate(ctx context.Context, candidate entities.Candidate) error {
	result := t.tx.WithContext(ctx).
		Model(&candidateModel{}).
		Where("poll_id = ? AND idx = ?", candidate.PollID, candidate.Index).
		Updates(map[string]any{
			"vote_count": candidate.VoteCount,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return t.repo.logError("poll_ledger_repo_update_candidate_failed", result.Error,
			"poll_id", candidate.PollID,
			"candidate_index", candidate.Index,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (t *txRecords) GetVoter(ctx context.Context, pollID uint64, voterID string) (entities.Voter, bool, error) {
	return getVoter(ctx, t.tx, t.repo, pollID, voterID, true)
}

// PutVoter inserts the ballot. The primary key on (poll_id, voter_id) makes
// a second ballot for the same voter fail even under concurrent units.
func (t *txRecords) PutVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModelFromEntity(voter)
	row.CreatedAt = time.Now().UTC()
	if err := t.tx.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return t.repo.logError("poll_ledger_repo_put_voter_failed", err,
			"poll_id", voter.PollID,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (t *txRecords) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return t.repo.logError("poll_ledger_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := t.tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return t.repo.logError("poll_ledger_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := t.tx.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return t.repo.logError("poll_ledger_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func getVoter(ctx context.Context, db *gorm.DB, repo *Repository, pollID uint64, voterID string, lock bool) (entities.Voter, bool, error) {
	query := db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row voterModel
	err := query.
		Where("poll_id = ? AND voter_id = ?", pollID, voterID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, repo.logError("poll_ledger_repo_get_voter_failed", err,
			"poll_id", pollID,
			"voter_id", voterID,
		)
	}
	return row.toEntity(), true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// uniqueViolationError maps a unique violation that escaped a unit, for
// example one raised at commit time, onto the ledger taxonomy.
func uniqueViolationError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintPollsPkey:
		return domainerrors.ErrPollAlreadyExists
	case constraintVotersPkey:
		return domainerrors.ErrAlreadyVoted
	case constraintCandidatesPkey:
		return domainerrors.ErrConflict
	default:
		return domainerrors.ErrConflict
	}
}

var _ ports.Ledger = (*Repository)(nil)
var _ ports.LedgerReader = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Records = (*txRecords)(nil)
