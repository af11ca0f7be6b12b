package models

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrNotAParticipant      = errors.New("employee is not a participant of this room")
	ErrInvalidRoomShape     = errors.New("direct room requires exactly one other participant")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrInvalidBatch         = errors.New("invalid batch")
	ErrDuplicateCandidate   = errors.New("candidate with this email already exists")
)
