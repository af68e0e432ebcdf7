package attestation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// InvalidInputError indicates malformed digests or parameters. No state was changed.
type InvalidInputError struct {
	err error
}

func NewInvalidInputErrorf(msg string, args ...interface{}) error {
	return InvalidInputError{fmt.Errorf(msg, args...)}
}

func (e InvalidInputError) Error() string { return e.err.Error() }
func (e InvalidInputError) Unwrap() error { return e.err }

// IsInvalidInputError returns whether err is an InvalidInputError
func IsInvalidInputError(err error) bool {
	var e InvalidInputError
	return errors.As(err, &e)
}

// RateLimitedError indicates that the creator exhausted its task budget for
// the current period. Callers may retry in a later period.
type RateLimitedError struct {
	Creator common.Address
	Period  uint64
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("creator %s exceeded task limit for period %d", e.Creator.Hex(), e.Period)
}

// IsRateLimitedError returns whether err is a RateLimitedError
func IsRateLimitedError(err error) bool {
	var e RateLimitedError
	return errors.As(err, &e)
}

// NotAuthorizedError indicates that the actor lacks the capability required
// for the operation.
type NotAuthorizedError struct {
	Actor      common.Address
	Capability string
}

func (e NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s lacks capability %s", e.Actor.Hex(), e.Capability)
}

// IsNotAuthorizedError returns whether err is a NotAuthorizedError
func IsNotAuthorizedError(err error) bool {
	var e NotAuthorizedError
	return errors.As(err, &e)
}

// NotFoundError indicates that a task or item with the given id is unknown.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IsNotFoundError returns whether err is a NotFoundError
func IsNotFoundError(err error) bool {
	var e NotFoundError
	return errors.As(err, &e)
}

// UnmappedTaskError indicates a consensus result for a task that no item
// requested. It points to a sequencing bug rather than to bad input.
type UnmappedTaskError struct {
	TaskID uint64
}

func (e UnmappedTaskError) Error() string {
	return fmt.Sprintf("task %d is not mapped to any item", e.TaskID)
}

// IsUnmappedTaskError returns whether err is an UnmappedTaskError
func IsUnmappedTaskError(err error) bool {
	var e UnmappedTaskError
	return errors.As(err, &e)
}

// TaskMismatchError indicates that a submitted task payload does not match
// the commitment stored at creation time.
type TaskMismatchError struct {
	TaskID uint64
	err    error
}

func NewTaskMismatchErrorf(taskID uint64, msg string, args ...interface{}) error {
	return TaskMismatchError{TaskID: taskID, err: fmt.Errorf(msg, args...)}
}

func (e TaskMismatchError) Error() string {
	return fmt.Sprintf("task %d does not match its commitment: %s", e.TaskID, e.err.Error())
}

func (e TaskMismatchError) Unwrap() error { return e.err }

// IsTaskMismatchError returns whether err is a TaskMismatchError
func IsTaskMismatchError(err error) bool {
	var e TaskMismatchError
	return errors.As(err, &e)
}

// InsufficientConfidenceError indicates a vote whose declared score is below
// the configured confidence threshold.
type InsufficientConfidenceError struct {
	Score     uint8
	Threshold uint8
}

func (e InsufficientConfidenceError) Error() string {
	return fmt.Sprintf("score %d is below confidence threshold %d", e.Score, e.Threshold)
}

// IsInsufficientConfidenceError returns whether err is an InsufficientConfidenceError
func IsInsufficientConfidenceError(err error) bool {
	var e InsufficientConfidenceError
	return errors.As(err, &e)
}

// DuplicateVoteError indicates that the voter already has an accepted
// response for the task.
type DuplicateVoteError struct {
	TaskID    uint64
	FirstVote *Response
}

func (e DuplicateVoteError) Error() string {
	return fmt.Sprintf("voter %s already voted on task %d", e.FirstVote.Voter.Hex(), e.TaskID)
}

// IsDuplicateVoteError returns whether err is a DuplicateVoteError
func IsDuplicateVoteError(err error) bool {
	var e DuplicateVoteError
	return errors.As(err, &e)
}

// AsDuplicateVoteError determines whether the given error is a DuplicateVoteError
// (potentially wrapped). It follows the same semantics as a checked type cast.
func AsDuplicateVoteError(err error) (*DuplicateVoteError, bool) {
	var e DuplicateVoteError
	ok := errors.As(err, &e)
	if ok {
		return &e, true
	}
	return nil, false
}

// InvalidSignatureError indicates that the response signature was not
// produced by the claimed voter over the canonical task message.
type InvalidSignatureError struct {
	TaskID uint64
	Voter  common.Address
}

func (e InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature by %s for task %d", e.Voter.Hex(), e.TaskID)
}

// IsInvalidSignatureError returns whether err is an InvalidSignatureError
func IsInvalidSignatureError(err error) bool {
	var e InvalidSignatureError
	return errors.As(err, &e)
}

// AlreadyFinalizedError indicates an attempt to finalize a task a second time.
type AlreadyFinalizedError struct {
	TaskID uint64
}

func (e AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("task %d is already finalized", e.TaskID)
}

// IsAlreadyFinalizedError returns whether err is an AlreadyFinalizedError
func IsAlreadyFinalizedError(err error) bool {
	var e AlreadyFinalizedError
	return errors.As(err, &e)
}

// InvalidStateError indicates an item status that does not permit the
// requested transition.
type InvalidStateError struct {
	ItemID uint64
	Status Status
	err    error
}

func NewInvalidStateErrorf(item *Item, msg string, args ...interface{}) error {
	return InvalidStateError{
		ItemID: item.ID,
		Status: item.Status,
		err:    fmt.Errorf(msg, args...),
	}
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("item %d in status %s: %s", e.ItemID, e.Status, e.err.Error())
}

func (e InvalidStateError) Unwrap() error { return e.err }

// IsInvalidStateError returns whether err is an InvalidStateError
func IsInvalidStateError(err error) bool {
	var e InvalidStateError
	return errors.As(err, &e)
}

// DownstreamApplyFailedError indicates that consensus was finalized and the
// vote was accepted, but the lifecycle transition failed. Finalization is not
// rolled back; the apply step is safe to retry.
type DownstreamApplyFailedError struct {
	TaskID  uint64
	Outcome bool
	err     error
}

func NewDownstreamApplyFailedError(taskID uint64, outcome bool, err error) error {
	return DownstreamApplyFailedError{TaskID: taskID, Outcome: outcome, err: err}
}

func (e DownstreamApplyFailedError) Error() string {
	return fmt.Sprintf("task %d finalized with outcome %t but downstream apply failed: %s", e.TaskID, e.Outcome, e.err.Error())
}

func (e DownstreamApplyFailedError) Unwrap() error { return e.err }

// IsDownstreamApplyFailedError returns whether err is a DownstreamApplyFailedError
func IsDownstreamApplyFailedError(err error) bool {
	var e DownstreamApplyFailedError
	return errors.As(err, &e)
}

// IssuanceFailedError indicates that the artifact issuer failed. The item
// stays authenticated but unlinked, and issuance may be retried.
type IssuanceFailedError struct {
	ItemID uint64
	err    error
}

func NewIssuanceFailedError(itemID uint64, err error) error {
	return IssuanceFailedError{ItemID: itemID, err: err}
}

func (e IssuanceFailedError) Error() string {
	return fmt.Sprintf("could not issue artifact for item %d: %s", e.ItemID, e.err.Error())
}

func (e IssuanceFailedError) Unwrap() error { return e.err }

// IsIssuanceFailedError returns whether err is an IssuanceFailedError
func IsIssuanceFailedError(err error) bool {
	var e IssuanceFailedError
	return errors.As(err, &e)
}

// ConfigurationError indicates that a constructor or component was initialized with
// invalid or inconsistent parameters.
type ConfigurationError struct {
	err error
}

func NewConfigurationErrorf(msg string, args ...interface{}) error {
	return ConfigurationError{fmt.Errorf(msg, args...)}
}

func (e ConfigurationError) Error() string { return e.err.Error() }
func (e ConfigurationError) Unwrap() error { return e.err }

// IsConfigurationError returns whether err is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e ConfigurationError
	return errors.As(err, &e)
}
