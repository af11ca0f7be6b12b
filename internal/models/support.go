package models

import (
	"time"
)

const (
	ConversationStatusOpen       = "open"
	ConversationStatusInProgress = "in_progress"
	ConversationStatusResolved   = "resolved"
	ConversationStatusClosed     = "closed"
)

const (
	SenderTypeUser    = "user"
	SenderTypeSupport = "support"
)

type SupportConversation struct {
	ID            int        `json:"id" db:"id"`
	UserID        *int       `json:"user_id,omitempty" db:"user_id"`
	UserEmail     string     `json:"user_email" db:"user_email"`
	UserName      string     `json:"user_name" db:"user_name"`
	Subject       *string    `json:"subject,omitempty" db:"subject"`
	Status        string     `json:"status" db:"status"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type SupportMessage struct {
	ID             int       `json:"id" db:"id"`
	ConversationID int       `json:"conversation_id" db:"conversation_id"`
	SenderType     string    `json:"sender_type" db:"sender_type"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	Message        string    `json:"message" db:"message"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func ValidConversationStatus(status string) bool {
	switch status {
	case ConversationStatusOpen, ConversationStatusInProgress,
		ConversationStatusResolved, ConversationStatusClosed:
		return true
	}
	return false
}
