package message

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/guesswho-game/guesswho/internal/repositories/message Repository

import (
	"context"

	"github.com/guesswho-game/guesswho/internal/models"
)

// Repository defines the interface for chat message persistence
type Repository interface {
	// CreateMessage persists a message, assigning it the next sequence
	// ID for the room, and returns the stored message
	CreateMessage(ctx context.Context, input *CreateMessageInput) (*models.Message, error)

	// GetMessage retrieves a message by room and ID
	GetMessage(ctx context.Context, input *GetMessageInput) (*models.Message, error)

	// GetLatestMessage retrieves the most recently created message in a
	// room, or nil when the room has none
	GetLatestMessage(ctx context.Context, input *GetLatestMessageInput) (*models.Message, error)

	// GetRecentMessages retrieves the newest messages in a room, newest
	// first, capped at the limit
	GetRecentMessages(ctx context.Context, input *GetRecentMessagesInput) ([]*models.Message, error)

	// GetNextMessage retrieves the first message with an ID greater than
	// the given one, or nil when none follows
	GetNextMessage(ctx context.Context, input *GetNextMessageInput) (*models.Message, error)

	// UpdateMessageBody replaces a message's body
	UpdateMessageBody(ctx context.Context, input *UpdateMessageBodyInput) error

	// SetMessageType replaces a message's type
	SetMessageType(ctx context.Context, input *SetMessageTypeInput) error

	// LikeMessage records a like; liking the same message twice fails
	LikeMessage(ctx context.Context, input *LikeMessageInput) (*models.Like, error)

	// UnlikeMessage removes a like and reports whether one existed
	UnlikeMessage(ctx context.Context, input *UnlikeMessageInput) (bool, error)

	// DeleteMessage removes a message
	DeleteMessage(ctx context.Context, input *DeleteMessageInput) error
}
