package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTaskNotCached and related errors describe controller precondition failures.
var (
	ErrTaskNotCached         = errors.New("task not in board cache")
	ErrTransitionUnavailable = errors.New("status transition unavailable")
	ErrNoFileSelected        = errors.New("no file selected")
	ErrUploadInFlight        = errors.New("upload already in progress")
	ErrTransport             = errors.New("transport failure")
)

// FailureKind classifies one failed backend interaction.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTransport   FailureKind = "transport"
	FailureApplication FailureKind = "application"
	FailureInternal    FailureKind = "internal"
)

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

// Error returns the wrapped transport error text.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Op) == "" {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError reports a non-2xx backend response and its detail message.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

// Error returns the status code and backend detail.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	prefix := ""
	if strings.TrimSpace(e.Op) != "" {
		prefix = e.Op + ": "
	}
	return fmt.Sprintf("%sbackend returned %d: %s", prefix, e.StatusCode, e.message())
}

func (e *APIError) message() string {
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		return detail
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// FailureKindOf classifies err into the client failure taxonomy.
func FailureKindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return FailureApplication
	}
	if errors.Is(err, ErrTransport) {
		return FailureTransport
	}
	return FailureInternal
}

// FailureDetail returns the user-facing message for err: the backend detail
// for application failures, a generic network message for transport failures.
func FailureDetail(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.message()
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Err == nil {
			return "Network error"
		}
		return "Network error: " + transportErr.Err.Error()
	}
	if errors.Is(err, ErrTransport) {
		return "Network error"
	}
	return err.Error()
}
