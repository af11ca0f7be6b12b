package models

import (
	"time"
)

const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypePDF   = "pdf"
	MessageTypeDoc   = "doc"
	MessageTypeLink  = "link"
	MessageTypeFile  = "file"
)

type ChatRoom struct {
	ID            int           `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Type          string        `json:"type" db:"type"`
	IsPinned      bool          `json:"is_pinned" db:"is_pinned"`
	CreatedBy     int           `json:"created_by" db:"created_by"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	LastMessageAt *time.Time    `json:"last_message_at,omitempty" db:"last_message_at"`
	Participants  []Participant `json:"participants,omitempty"`
}

type Participant struct {
	ID         int       `json:"id" db:"id"`
	RoomID     int       `json:"room_id" db:"room_id"`
	EmployeeID int       `json:"participant_id" db:"employee_id"`
	Name       string    `json:"participant_name" db:"name"`
	Role       string    `json:"participant_role" db:"role"`
	JoinedAt   time.Time `json:"joined_at" db:"joined_at"`
}

type ChatMessage struct {
	ID          int          `json:"id" db:"id"`
	RoomID      int          `json:"room_id" db:"room_id"`
	SenderID    int          `json:"sender_id" db:"sender_id"`
	SenderName  string       `json:"sender_name" db:"sender_name"`
	MessageType string       `json:"message_type" db:"message_type"`
	Content     string       `json:"content" db:"content"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ID        int    `json:"id" db:"id"`
	MessageID int    `json:"message_id" db:"message_id"`
	FileName  string `json:"file_name" db:"file_name"`
	FileURL   string `json:"file_url" db:"file_url"`
	FileType  string `json:"file_type" db:"file_type"`
	FileSize  int64  `json:"file_size" db:"file_size"`
}
