package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// httpStatusError carries a non-2xx reply from a chat endpoint.
type httpStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *httpStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// classifyError maps a transport failure onto a StreamError kind.
func classifyError(err error, endpoint string) *domain.StreamError {
	var streamErr *domain.StreamError
	if errors.As(err, &streamErr) {
		return streamErr
	}
	return &domain.StreamError{Kind: failureKind(err), Endpoint: endpoint, Err: err}
}

func failureKind(err error) domain.StreamFailure {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return kindForStatus(statusErr.StatusCode)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.StreamConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.StreamTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.StreamTimeout
	}

	// SDK errors only expose their status through the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return domain.StreamConnectionRefused
	case strings.Contains(msg, "error 401"), strings.Contains(msg, "error 403"),
		strings.Contains(msg, "unauthenticated"), strings.Contains(msg, "permission_denied"),
		strings.Contains(msg, "api key not valid"):
		return domain.StreamUnauthorized
	case strings.Contains(msg, "error 404"), strings.Contains(msg, "not_found"):
		return domain.StreamNotFound
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return domain.StreamTimeout
	}
	return domain.StreamGeneric
}

func kindForStatus(code int) domain.StreamFailure {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.StreamUnauthorized
	case http.StatusNotFound:
		return domain.StreamNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.StreamTimeout
	}
	return domain.StreamGeneric
}
