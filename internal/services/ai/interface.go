// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// CompletionProvider turns an ordered conversation history into a single
// model reply. The last turn of the history is the newest user turn.
type CompletionProvider interface {
	Complete(ctx context.Context, history []domain.Turn) (string, error)
	HealthCheck(ctx context.Context) error
}
