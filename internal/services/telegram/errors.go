// File: internal/services/telegram/errors.go
package telegram

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeAPI        ErrorType = "API"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type TelegramError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Cause     error
}

func (e *TelegramError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Telegram %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Telegram %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *TelegramError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *TelegramError {
	return &TelegramError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewNetworkError(operation, msg string, cause error) *TelegramError {
	return &TelegramError{Type: ErrTypeNetwork, Operation: operation, Message: msg, Cause: cause}
}

func NewAPIError(operation string, code int, msg string) *TelegramError {
	return &TelegramError{Type: ErrTypeAPI, Operation: operation, Code: code, Message: msg}
}

func NewValidationError(operation, msg string) *TelegramError {
	return &TelegramError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}
