package chat

import (
	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/models"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// Config holds configuration for the chat service
type Config struct {
	// Repository dependencies
	MessageRepo messageRepo.Repository
	UserRepo    userRepo.Repository

	// Service dependencies
	Clock clock.Clock
}

// SendMessageInput contains parameters for creating a message
type SendMessageInput struct {
	// RoomID is the room to post in
	RoomID string

	// UserID is the author
	UserID string

	// Body is the message text
	Body string

	// System marks a generated status message
	System bool
}

// SendMessageOutput contains the created message
type SendMessageOutput struct {
	// Message is the stored message
	Message *models.Message
}

// EditMessageInput contains parameters for editing a message
type EditMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// UserID is the member attempting the edit
	UserID string

	// MessageID is the message to edit
	MessageID int64

	// Body is the new message text
	Body string
}

// EditMessageOutput contains the edited message
type EditMessageOutput struct {
	// Message is the updated message
	Message *models.Message
}

// LikeMessageInput contains parameters for liking a message
type LikeMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// UserID is the member placing the like
	UserID string

	// MessageID is the message to like
	MessageID int64
}

// LikeMessageOutput contains the recorded like
type LikeMessageOutput struct {
	// Like is the stored like
	Like *models.Like
}

// UnlikeMessageInput contains parameters for removing a like
type UnlikeMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// UserID is the member removing their like
	UserID string

	// MessageID is the message to unlike
	MessageID int64
}

// UnlikeMessageOutput contains the result of removing a like
type UnlikeMessageOutput struct {
	// Removed indicates whether a like existed to remove
	Removed bool
}

// DeleteMessageInput contains parameters for deleting a message
type DeleteMessageInput struct {
	// RoomID is the room the message was sent in
	RoomID string

	// UserID is the member attempting the delete
	UserID string

	// MessageID is the message to delete
	MessageID int64
}

// DeleteMessageOutput contains the result of deleting a message
type DeleteMessageOutput struct {
	// UnchainedMessageID is the successor message promoted back to
	// normal, if any
	UnchainedMessageID *int64
}
