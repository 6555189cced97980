package chat

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/guesswho-game/guesswho/internal/services/chat Service

import (
	"context"
)

// Service is the interface for chat messages and the chained-message
// compression logic
type Service interface {
	// SendMessage creates a message, chaining it onto the previous one
	// when both share an author
	SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error)

	// EditMessage replaces a message's body; only the author may edit
	EditMessage(ctx context.Context, input *EditMessageInput) (*EditMessageOutput, error)

	// LikeMessage records a like; at most one per member and message
	LikeMessage(ctx context.Context, input *LikeMessageInput) (*LikeMessageOutput, error)

	// UnlikeMessage removes a like; removing a non-like is a no-op
	UnlikeMessage(ctx context.Context, input *UnlikeMessageInput) (*UnlikeMessageOutput, error)

	// DeleteMessage removes a message, promoting a directly chained
	// successor back to a normal message when needed
	DeleteMessage(ctx context.Context, input *DeleteMessageInput) (*DeleteMessageOutput, error)
}
