// File: internal/domain/conversation.go
package domain

import "time"

// Conversation is a single titled thread of turns owned by one sender.
// A sender may own many conversations; at most one of them is active.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SenderID  int64     `gorm:"index;not null" json:"sender_id"` // The Telegram chat that owns the conversation
	Title     string    `json:"title"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivePointer records which conversation currently receives a sender's
// turns. It is updated in the same transaction as the is_active flag flips,
// so the single-active invariant stays directly queryable.
type ActivePointer struct {
	SenderID       int64 `gorm:"primarykey"`
	ConversationID uint  `gorm:"not null"`
}
