package commands

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"
)

const (
	moduleName = "governance/poll-ledger"

	operationCreatePoll        = "create_poll"
	operationRegisterCandidate = "register_candidate"
	operationCastVote          = "cast_vote"
)

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

// unixSeconds is the timestamp unit stored in poll windows.
func unixSeconds(ts time.Time) uint64 {
	seconds := ts.Unix()
	if seconds < 0 {
		return 0
	}
	return uint64(seconds)
}

func record(recorder ports.OperationRecorder, operation string, err error) {
	if recorder == nil {
		return
	}
	recorder.RecordOperation(operation, domainerrors.Code(err))
}

// logRejected logs taxonomy errors as warnings and everything else as errors.
func logRejected(ctx context.Context, logger *slog.Logger, message string, event string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", moduleName,
		"layer", "application",
		"code", domainerrors.Code(err),
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	level := slog.LevelWarn
	if domainerrors.Code(err) == "internal_error" {
		level = slog.LevelError
	}
	logger.Log(ctx, level, message, fields...)
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
