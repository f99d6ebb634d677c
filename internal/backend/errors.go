package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport: the request did not complete or came back non-2xx.
	ErrTransport = errors.New("backend transport failure")
	// ErrRejected: the backend answered and reported failure.
	ErrRejected = errors.New("backend rejected request")
	// ErrUnexpected: the response could not be understood.
	ErrUnexpected = errors.New("backend unexpected response")
)

// RejectedError carries the backend's own failure message.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rejected", e.Op)
	}
	return fmt.Sprintf("%s: rejected: %s", e.Op, e.Message)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Reason extracts the backend message from a rejection, "" otherwise.
func Reason(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Message
	}
	return ""
}

func unexpected(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnexpected, err)
}

// IsApplicationError reports whether the backend answered but the operation
// did not succeed, as opposed to the request itself failing.
func IsApplicationError(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrUnexpected)
}
