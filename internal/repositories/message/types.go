package message

import (
	"time"

	"github.com/guesswho-game/guesswho/internal/models"
)

// CreateMessageInput contains parameters for persisting a message. The
// ID field of the message is ignored; the repository assigns it.
type CreateMessageInput struct {
	// Message is the message to save
	Message *models.Message
}

// GetMessageInput contains parameters for retrieving a message
type GetMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64
}

// GetLatestMessageInput contains parameters for the latest message
type GetLatestMessageInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// GetRecentMessagesInput contains parameters for the recent window
type GetRecentMessagesInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// Limit caps the number of messages returned
	Limit int
}

// GetNextMessageInput contains parameters for the successor lookup
type GetNextMessageInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// AfterID is the message ID to search after
	AfterID int64
}

// UpdateMessageBodyInput contains parameters for editing a body
type UpdateMessageBodyInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64

	// Body is the new message text
	Body string
}

// SetMessageTypeInput contains parameters for changing a message type
type SetMessageTypeInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64

	// Type is the new message type
	Type models.MessageType
}

// LikeMessageInput contains parameters for liking a message
type LikeMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64

	// UserID is the member placing the like
	UserID string

	// Now is when the like was placed
	Now time.Time
}

// UnlikeMessageInput contains parameters for removing a like
type UnlikeMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64

	// UserID is the member removing their like
	UserID string
}

// DeleteMessageInput contains parameters for deleting a message
type DeleteMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// MessageID is the room-scoped message sequence number
	MessageID int64
}
