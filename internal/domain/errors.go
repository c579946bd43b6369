package domain

import (
	"errors"
	"fmt"
)

// Rejection reasons reported by the command parser.
const (
	RejectEmpty             = "empty"
	RejectDenylisted        = "denylisted"
	RejectUnterminatedQuote = "unterminated quote"
)

// RejectedError is returned when input must not reach the executor.
type RejectedError struct {
	Reason  string
	Pattern string
}

func (e *RejectedError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("command rejected (%s): matches %q", e.Reason, e.Pattern)
	}
	return fmt.Sprintf("command rejected (%s)", e.Reason)
}

// IsRejected reports whether err is an input rejection.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// ErrEmptyResponse signals a stream that completed with no visible content.
var ErrEmptyResponse = errors.New("AI returned no usable response")

// StreamFailure classifies transport-level AI failures.
type StreamFailure string

const (
	StreamConnectionRefused StreamFailure = "connection_refused"
	StreamUnauthorized      StreamFailure = "unauthorized"
	StreamNotFound          StreamFailure = "not_found"
	StreamTimeout           StreamFailure = "timeout"
	StreamGeneric           StreamFailure = "generic"
)

// StreamError wraps a failed AI request with a user-facing classification.
type StreamError struct {
	Kind     StreamFailure
	Endpoint string
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// UserMessage renders the failure for display in the REPL.
func (e *StreamError) UserMessage() string {
	switch e.Kind {
	case StreamConnectionRefused:
		return fmt.Sprintf("Cannot reach the AI service at %s. Make sure it is running.", e.Endpoint)
	case StreamUnauthorized:
		return "The AI service rejected the API key. Check the configured auth environment variable."
	case StreamNotFound:
		return fmt.Sprintf("The AI endpoint %s was not found. Check the backend URL and model.", e.Endpoint)
	case StreamTimeout:
		return "The AI service did not answer in time."
	default:
		return fmt.Sprintf("Error while getting the AI response: %v", e.Err)
	}
}
