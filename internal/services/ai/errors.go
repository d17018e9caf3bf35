// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// AIError covers every failure of the completion round trip. A PROVIDER
// error with a Message carries the upstream error payload; a PROVIDER
// error without one means the response had neither a candidate nor an
// explicit error and must be treated as opaque.
type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Upstream  bool // Message was taken verbatim from the upstream error payload
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewNetworkError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeNetwork, Operation: operation, Message: msg, Cause: cause}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func NewUpstreamError(operation string, code int, msg string) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Code: code, Message: msg, Upstream: true}
}

// UpstreamMessage extracts the provider's own error message from err, if
// the upstream API supplied one. Opaque failures report false.
func UpstreamMessage(err error) (string, bool) {
	var aiErr *AIError
	if errors.As(err, &aiErr) && aiErr.Upstream && aiErr.Message != "" {
		return aiErr.Message, true
	}
	return "", false
}
