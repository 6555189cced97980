package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/guesswho-game/guesswho/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	messageKeyPrefix = "message:"
	indexKeyPrefix   = "room:messages:"
	seqKeyPrefix     = "room:message_seq:"
)

// Define errors
var (
	// ErrMessageNotFound is returned when a message is not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrAlreadyLiked is returned when a member likes a message twice
	ErrAlreadyLiked = errors.New("message already liked")

	// ErrConflict is returned when a guarded write lost to a concurrent
	// writer and should be retried after a re-read
	ErrConflict = errors.New("concurrent update conflict")
)

// Config holds configuration for the Redis message repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed message repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func messageKey(roomID string, id int64) string {
	return messageKeyPrefix + roomID + ":" + strconv.FormatInt(id, 10)
}

func indexKey(roomID string) string { return indexKeyPrefix + roomID }

// CreateMessage persists a message under the next room sequence ID
func (r *redisRepository) CreateMessage(ctx context.Context, input *CreateMessageInput) (*models.Message, error) {
	if input == nil || input.Message == nil {
		return nil, errors.New("input and message cannot be nil")
	}
	if input.Message.RoomID == "" {
		return nil, errors.New("message room ID cannot be empty")
	}

	id, err := r.client.Incr(ctx, seqKeyPrefix+input.Message.RoomID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate message ID: %w", err)
	}

	msg := *input.Message
	msg.ID = id

	msgJSON, err := json.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, messageKey(msg.RoomID, id), msgJSON, 0)
	pipe.ZAdd(ctx, indexKey(msg.RoomID), redis.Z{
		Score:  float64(id),
		Member: strconv.FormatInt(id, 10),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return &msg, nil
}

// GetMessage retrieves a message by room and ID from Redis
func (r *redisRepository) GetMessage(ctx context.Context, input *GetMessageInput) (*models.Message, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return r.getMessage(ctx, r.client, input.RoomID, input.MessageID)
}

func (r *redisRepository) getMessage(ctx context.Context, c redis.Cmdable, roomID string, id int64) (*models.Message, error) {
	msgJSON, err := c.Get(ctx, messageKey(roomID, id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	var msg models.Message
	if err := json.Unmarshal([]byte(msgJSON), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

func (r *redisRepository) messagesByIDs(ctx context.Context, roomID string, ids []string) ([]*models.Message, error) {
	messages := make([]*models.Message, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt message index entry %q: %w", raw, err)
		}

		msg, err := r.getMessage(ctx, r.client, roomID, id)
		if err != nil {
			// Index entry outlived the message
			if errors.Is(err, ErrMessageNotFound) {
				continue
			}
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// GetLatestMessage retrieves the most recently created message, or nil
func (r *redisRepository) GetLatestMessage(ctx context.Context, input *GetLatestMessageInput) (*models.Message, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	ids, err := r.client.ZRevRange(ctx, indexKey(input.RoomID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get latest message: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	messages, err := r.messagesByIDs(ctx, input.RoomID, ids)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// GetRecentMessages retrieves the newest messages, newest first
func (r *redisRepository) GetRecentMessages(ctx context.Context, input *GetRecentMessagesInput) ([]*models.Message, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	limit := int64(input.Limit)
	if limit <= 0 {
		limit = 1
	}

	ids, err := r.client.ZRevRange(ctx, indexKey(input.RoomID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}

	return r.messagesByIDs(ctx, input.RoomID, ids)
}

// GetNextMessage retrieves the first message after the given ID, or nil
func (r *redisRepository) GetNextMessage(ctx context.Context, input *GetNextMessageInput) (*models.Message, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	ids, err := r.client.ZRangeByScore(ctx, indexKey(input.RoomID), &redis.ZRangeBy{
		Min:   "(" + strconv.FormatInt(input.AfterID, 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get next message: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	messages, err := r.messagesByIDs(ctx, input.RoomID, ids)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// updateMessage applies fn to a message inside a WATCH transaction. fn
// may return an error to abort the update.
func (r *redisRepository) updateMessage(ctx context.Context, roomID string, id int64, fn func(*models.Message) error) (*models.Message, error) {
	key := messageKey(roomID, id)
	var updated *models.Message

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		msg, err := r.getMessage(ctx, tx, roomID, id)
		if err != nil {
			return err
		}

		if err := fn(msg); err != nil {
			return err
		}

		msgJSON, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, msgJSON, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = msg
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateMessageBody replaces a message's body
func (r *redisRepository) UpdateMessageBody(ctx context.Context, input *UpdateMessageBodyInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	_, err := r.updateMessage(ctx, input.RoomID, input.MessageID, func(msg *models.Message) error {
		msg.Body = input.Body
		return nil
	})
	return err
}

// SetMessageType replaces a message's type
func (r *redisRepository) SetMessageType(ctx context.Context, input *SetMessageTypeInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	_, err := r.updateMessage(ctx, input.RoomID, input.MessageID, func(msg *models.Message) error {
		msg.Type = input.Type
		return nil
	})
	return err
}

// LikeMessage records a like; a second like by the same member fails
func (r *redisRepository) LikeMessage(ctx context.Context, input *LikeMessageInput) (*models.Like, error) {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return nil, errors.New("input, room ID and user ID cannot be empty")
	}

	like := models.Like{
		UserID: input.UserID,
		Since:  input.Now,
	}

	_, err := r.updateMessage(ctx, input.RoomID, input.MessageID, func(msg *models.Message) error {
		if _, exists := msg.Likes[input.UserID]; exists {
			return ErrAlreadyLiked
		}
		if msg.Likes == nil {
			msg.Likes = make(map[string]models.Like)
		}
		msg.Likes[input.UserID] = like
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &like, nil
}

// UnlikeMessage removes a like and reports whether one existed
func (r *redisRepository) UnlikeMessage(ctx context.Context, input *UnlikeMessageInput) (bool, error) {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return false, errors.New("input, room ID and user ID cannot be empty")
	}

	removed := false
	_, err := r.updateMessage(ctx, input.RoomID, input.MessageID, func(msg *models.Message) error {
		if _, exists := msg.Likes[input.UserID]; !exists {
			return nil
		}
		delete(msg.Likes, input.UserID)
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return removed, nil
}

// DeleteMessage removes a message and its index entry
func (r *redisRepository) DeleteMessage(ctx context.Context, input *DeleteMessageInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	deleted, err := r.client.Del(ctx, messageKey(input.RoomID, input.MessageID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if deleted == 0 {
		return ErrMessageNotFound
	}

	if err := r.client.ZRem(ctx, indexKey(input.RoomID), strconv.FormatInt(input.MessageID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove message index entry: %w", err)
	}

	return nil
}
