package rest

import (
	"errors"
	"net/http"

	"github.com/onflow/flow-attestation/model/attestation"
)

// StatusError provides custom error with http status.
type StatusError interface {
	error                // this is the actual error that occurred
	Status() int         // the HTTP status code to return
	UserMessage() string // the error message to return to the client
}

// NewRestError creates an error returned to user with provided status
// user displayed message and internal error
func NewRestError(status int, msg string, err error) *Error {
	return &Error{
		status:      status,
		userMessage: msg,
		err:         err,
	}
}

// NewBadRequestError creates a new bad request rest error.
func NewBadRequestError(err error) *Error {
	return NewRestError(http.StatusBadRequest, err.Error(), err)
}

// Error is implementation of status error.
type Error struct {
	status      int
	userMessage string
	err         error
}

func (e *Error) UserMessage() string {
	return e.userMessage
}

// Status returns error http status code.
func (e *Error) Status() int {
	return e.status
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// errorToStatusError maps the errors of the attestation core to a status.
// Unexpected errors are reported as internal errors without details.
func errorToStatusError(err error) StatusError {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	switch {
	case attestation.IsInvalidInputError(err):
		return NewBadRequestError(err)
	case attestation.IsNotAuthorizedError(err):
		return NewRestError(http.StatusForbidden, err.Error(), err)
	case attestation.IsNotFoundError(err):
		return NewRestError(http.StatusNotFound, err.Error(), err)
	case attestation.IsRateLimitedError(err):
		return NewRestError(http.StatusTooManyRequests, err.Error(), err)
	case attestation.IsDuplicateVoteError(err),
		attestation.IsAlreadyFinalizedError(err),
		attestation.IsInvalidStateError(err):
		return NewRestError(http.StatusConflict, err.Error(), err)
	case attestation.IsTaskMismatchError(err),
		attestation.IsInsufficientConfidenceError(err),
		attestation.IsInvalidSignatureError(err):
		return NewRestError(http.StatusUnprocessableEntity, err.Error(), err)
	case attestation.IsDownstreamApplyFailedError(err),
		attestation.IsIssuanceFailedError(err):
		return NewRestError(http.StatusBadGateway, err.Error(), err)
	}
	return NewRestError(http.StatusInternalServerError, "internal server error", err)
}
