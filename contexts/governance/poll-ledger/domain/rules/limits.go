package rules

import (
	"strings"
	"unicode/utf8"

	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
)

const (
	DefaultMaxDescriptionLength   = 280
	DefaultMaxCandidateNameLength = 100
)

// Limits bounds the text fields persisted in ledger records. Lengths are
// counted in code points.
type Limits struct {
	MaxDescriptionLength   int
	MaxCandidateNameLength int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDescriptionLength:   DefaultMaxDescriptionLength,
		MaxCandidateNameLength: DefaultMaxCandidateNameLength,
	}
}

func (l Limits) resolve() Limits {
	if l.MaxDescriptionLength <= 0 {
		l.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	if l.MaxCandidateNameLength <= 0 {
		l.MaxCandidateNameLength = DefaultMaxCandidateNameLength
	}
	return l
}

func (l Limits) CheckDescription(description string) error {
	if !utf8.ValidString(description) {
		return domainerrors.ErrInvalidInput
	}
	if utf8.RuneCountInString(description) > l.resolve().MaxDescriptionLength {
		return domainerrors.ErrDescriptionTooLong
	}
	return nil
}

func (l Limits) CheckCandidateName(name string) error {
	if !utf8.ValidString(name) || strings.TrimSpace(name) == "" {
		return domainerrors.ErrInvalidInput
	}
	if utf8.RuneCountInString(name) > l.resolve().MaxCandidateNameLength {
		return domainerrors.ErrCandidateNameTooLong
	}
	return nil
}
