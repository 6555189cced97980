package chat

import (
	"context"
	"html"

	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/models"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// service implements the Service interface
type service struct {
	messageRepo messageRepo.Repository
	userRepo    userRepo.Repository
	clock       clock.Clock
}

// New creates a new chat service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.MessageRepo == nil {
		return nil, ErrNilMessageRepo
	}
	if cfg.UserRepo == nil {
		return nil, ErrNilUserRepo
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	return &service{
		messageRepo: cfg.MessageRepo,
		userRepo:    cfg.UserRepo,
		clock:       cfg.Clock,
	}, nil
}

func validateBody(body string) (string, error) {
	if len(body) < models.MessageMinLength {
		return "", ErrBodyTooShort
	}
	if len(body) > models.MessageMaxLength {
		return "", ErrBodyTooLong
	}
	return html.EscapeString(body), nil
}

// SendMessage creates a message. A user message directly following
// another message by the same author is stored as CHAINED, unless that
// previous message is a system message. System messages never chain.
func (s *service) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	if !user.Configured() {
		return nil, ErrProfileRequired
	}

	body := input.Body
	if !input.System {
		if body, err = validateBody(body); err != nil {
			return nil, err
		}
	}

	msgType := models.MessageTypeNormal
	if input.System {
		msgType = models.MessageTypeSystem
	} else {
		last, err := s.messageRepo.GetLatestMessage(ctx, &messageRepo.GetLatestMessageInput{RoomID: input.RoomID})
		if err != nil {
			return nil, err
		}
		if last != nil && last.UserID == input.UserID && last.Type != models.MessageTypeSystem {
			msgType = models.MessageTypeChained
		}
	}

	msg, err := s.messageRepo.CreateMessage(ctx, &messageRepo.CreateMessageInput{
		Message: &models.Message{
			RoomID:    input.RoomID,
			UserID:    input.UserID,
			Body:      body,
			Type:      msgType,
			CreatedAt: s.clock.Now(),
		},
	})
	if err != nil {
		return nil, err
	}

	return &SendMessageOutput{Message: msg}, nil
}

// EditMessage replaces a message's body; only the author may edit
func (s *service) EditMessage(ctx context.Context, input *EditMessageInput) (*EditMessageOutput, error) {
	body, err := validateBody(input.Body)
	if err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.GetMessage(ctx, &messageRepo.GetMessageInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
	})
	if err != nil {
		return nil, err
	}

	if msg.UserID != input.UserID {
		return nil, ErrNotMessageAuthor
	}

	if err := s.messageRepo.UpdateMessageBody(ctx, &messageRepo.UpdateMessageBodyInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
		Body:      body,
	}); err != nil {
		return nil, err
	}

	msg.Body = body
	return &EditMessageOutput{Message: msg}, nil
}

// LikeMessage records a like; a second like by the same member fails
func (s *service) LikeMessage(ctx context.Context, input *LikeMessageInput) (*LikeMessageOutput, error) {
	like, err := s.messageRepo.LikeMessage(ctx, &messageRepo.LikeMessageInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
		UserID:    input.UserID,
		Now:       s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &LikeMessageOutput{Like: like}, nil
}

// UnlikeMessage removes a like and reports whether one existed
func (s *service) UnlikeMessage(ctx context.Context, input *UnlikeMessageInput) (*UnlikeMessageOutput, error) {
	removed, err := s.messageRepo.UnlikeMessage(ctx, &messageRepo.UnlikeMessageInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &UnlikeMessageOutput{Removed: removed}, nil
}

// DeleteMessage removes a message. Deleting a NORMAL message whose
// immediate successor is CHAINED by the same author promotes that
// successor back to NORMAL; it no longer has a message to chain onto.
func (s *service) DeleteMessage(ctx context.Context, input *DeleteMessageInput) (*DeleteMessageOutput, error) {
	msg, err := s.messageRepo.GetMessage(ctx, &messageRepo.GetMessageInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
	})
	if err != nil {
		return nil, err
	}

	if msg.UserID != input.UserID {
		return nil, ErrNotMessageAuthor
	}

	if err := s.messageRepo.DeleteMessage(ctx, &messageRepo.DeleteMessageInput{
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
	}); err != nil {
		return nil, err
	}

	if msg.Type != models.MessageTypeNormal {
		return &DeleteMessageOutput{}, nil
	}

	next, err := s.messageRepo.GetNextMessage(ctx, &messageRepo.GetNextMessageInput{
		RoomID:  input.RoomID,
		AfterID: input.MessageID,
	})
	if err != nil {
		return nil, err
	}

	if next == nil || next.UserID != msg.UserID || next.Type != models.MessageTypeChained {
		return &DeleteMessageOutput{}, nil
	}

	if err := s.messageRepo.SetMessageType(ctx, &messageRepo.SetMessageTypeInput{
		RoomID:    input.RoomID,
		MessageID: next.ID,
		Type:      models.MessageTypeNormal,
	}); err != nil {
		return nil, err
	}

	return &DeleteMessageOutput{UnchainedMessageID: &next.ID}, nil
}
