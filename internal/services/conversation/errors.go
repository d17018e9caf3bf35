// File: internal/services/conversation/errors.go
package conversation

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// StoreError carries the error kind alongside the operation that failed so
// the dispatcher can decide between a user-visible reply and a logged
// internal failure.
type StoreError struct {
	Type           ErrorType
	Operation      string
	Message        string
	SenderID       int64
	ConversationID uint
	Cause          error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conversation %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("conversation %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *StoreError {
	return &StoreError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewValidationError(operation, msg string) *StoreError {
	return &StoreError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewStorageError(operation, msg string, cause error) *StoreError {
	return &StoreError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}

func NewNotFoundError(operation string, senderID int64, conversationID uint) *StoreError {
	return &StoreError{
		Type:           ErrTypeNotFound,
		Operation:      operation,
		Message:        "conversation not found or not owned by sender",
		SenderID:       senderID,
		ConversationID: conversationID,
	}
}

// IsNotFound reports whether err is a NOT_FOUND store error.
func IsNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Type == ErrTypeNotFound
}
