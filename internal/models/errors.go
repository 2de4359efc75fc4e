package models

import (
	"errors"
	"fmt"
)

// Validation errors: rejected before any write.
var (
	ErrInvalidAmount  = errors.New("donation amount must be a positive value with at most two decimal places")
	ErrReasonRequired = errors.New("a rejection reason is required")
	ErrNotEditable    = errors.New("campaign content can only be edited while pending or rejected")
)

// Not-found errors.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrDonationNotFound = errors.New("donation not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Conflict errors: a status guard was no longer satisfied. Callers should
// refresh and retry rather than treat these as bugs.
var (
	ErrCampaignNotAcceptingDonations = errors.New("campaign is not accepting donations")
	ErrFeaturedCapReached            = errors.New("featured campaign limit reached")
)

// ConflictError reports a transition whose from-status guard failed, either
// because the transition is not in the table or because a concurrent writer
// already moved the campaign.
type ConflictError struct {
	Entity string
	From   string
	To     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// IsConflict classifies an error as "state changed, refresh and retry".
func IsConflict(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, ErrCampaignNotAcceptingDonations) || errors.Is(err, ErrFeaturedCapReached)
}

// ValidationError carries a free-form input validation message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation classifies an error as a caller mistake, rejected before any
// write happened.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrReasonRequired) || errors.Is(err, ErrNotEditable)
}

// IsNotFound classifies lookup misses.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound) || errors.Is(err, ErrDonationNotFound) ||
		errors.Is(err, ErrQuestionNotFound) || errors.Is(err, ErrUserNotFound)
}
