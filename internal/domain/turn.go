// File: internal/domain/turn.go
package domain

import "time"

// TurnRole identifies who produced a turn.
type TurnRole string

const (
	RoleUser  TurnRole = "user"
	RoleModel TurnRole = "model"
)

// Valid reports whether the role is one of the known values.
func (r TurnRole) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Turn is one entry in a conversation's history. Turns are append-only;
// they are never reordered or truncated.
type Turn struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Role           TurnRole  `gorm:"not null" json:"role"`
	Text           string    `gorm:"not null" json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
