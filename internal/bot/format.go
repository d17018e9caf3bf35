// File: internal/bot/format.go
package bot

import (
	"fmt"
	"strings"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// FormatConversationList renders the /history reply in Telegram Markdown.
// Conversations arrive most recent first.
func FormatConversationList(conversations []domain.Conversation) string {
	var b strings.Builder
	b.WriteString("*Your saved conversations:*\n\n")

	for _, c := range conversations {
		activeMark := ""
		if c.IsActive {
			activeMark = " (✅ active)"
		}
		fmt.Fprintf(&b, "ID: *%d*\n", c.ID)
		fmt.Fprintf(&b, "*%s*%s\n", c.Title, activeMark)
		fmt.Fprintf(&b, "Created: %s\n\n", c.CreatedAt.Format("2006-01-02"))
	}

	b.WriteString("To resume a conversation, send: */switch ID* with a number from the list.")
	return b.String()
}
