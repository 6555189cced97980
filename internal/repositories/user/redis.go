package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guesswho-game/guesswho/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	userKeyPrefix = "user:"
)

// ErrUserNotFound is returned when a user is not found
var ErrUserNotFound = errors.New("user not found")

// Config holds configuration for the Redis user repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed user repository
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

// SaveUser persists a user to Redis
func (r *redisRepository) SaveUser(ctx context.Context, input *SaveUserInput) error {
	if input == nil || input.User == nil {
		return errors.New("input and user cannot be nil")
	}

	userJSON, err := json.Marshal(input.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	userKey := userKeyPrefix + input.User.ID
	if err := r.client.Set(ctx, userKey, userJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID from Redis
func (r *redisRepository) GetUser(ctx context.Context, input *GetUserInput) (*models.User, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.New("input and user ID cannot be empty")
	}

	userJSON, err := r.client.Get(ctx, userKeyPrefix+input.UserID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// GetUsers retrieves several users at once using a pipeline. Unknown
// IDs are skipped rather than failing the whole lookup.
func (r *redisRepository) GetUsers(ctx context.Context, input *GetUsersInput) ([]*models.User, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if len(input.UserIDs) == 0 {
		return []*models.User{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(input.UserIDs))
	for _, id := range input.UserIDs {
		cmds[id] = pipe.Get(ctx, userKeyPrefix+id)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	users := make([]*models.User, 0, len(input.UserIDs))
	for _, id := range input.UserIDs {
		userJSON, err := cmds[id].Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get user %s: %w", id, err)
		}

		var user models.User
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user %s: %w", id, err)
		}
		users = append(users, &user)
	}

	return users, nil
}
