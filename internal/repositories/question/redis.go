package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guesswho-game/guesswho/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	questionKeyPrefix      = "question:"
	roomQuestionsKeyPrefix = "room:questions:"
	questionPoolKey        = "questions:pool"
)

// Define errors
var (
	// ErrQuestionNotFound is returned when a question is not found
	ErrQuestionNotFound = errors.New("question not found")

	// ErrNoQuestionsLeft is returned when the pool holds no question the
	// room hasn't already seen
	ErrNoQuestionsLeft = errors.New("no unused questions left for this room")

	// ErrQuestionNotOffered is returned when selecting a question that is
	// not a pending option for the room
	ErrQuestionNotOffered = errors.New("question is not a pending selection option")

	// ErrQuestionAlreadySelected is returned when the room already has a
	// selected question
	ErrQuestionAlreadySelected = errors.New("room already has a selected question")

	// ErrNoQuestionSelected is returned when the room has no selected
	// question
	ErrNoQuestionSelected = errors.New("no question selected")

	// ErrConflict is returned when a guarded write lost to a concurrent
	// writer and should be retried after a re-read
	ErrConflict = errors.New("concurrent update conflict")
)

// Config holds configuration for the Redis question repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed question repository
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

func roomQuestionsKey(roomID string) string { return roomQuestionsKeyPrefix + roomID }

// AddQuestion inserts a question into the global pool
func (r *redisRepository) AddQuestion(ctx context.Context, input *AddQuestionInput) error {
	if input == nil || input.Question == nil {
		return errors.New("input and question cannot be nil")
	}

	questionJSON, err := json.Marshal(input.Question)
	if err != nil {
		return fmt.Errorf("failed to marshal question: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, questionKeyPrefix+input.Question.ID, questionJSON, 0)
	pipe.SAdd(ctx, questionPoolKey, input.Question.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add question: %w", err)
	}

	return nil
}

// GetQuestion retrieves a question by ID from Redis
func (r *redisRepository) GetQuestion(ctx context.Context, input *GetQuestionInput) (*models.Question, error) {
	if input == nil || input.QuestionID == "" {
		return nil, errors.New("input and question ID cannot be empty")
	}

	return r.getQuestion(ctx, input.QuestionID)
}

func (r *redisRepository) getQuestion(ctx context.Context, questionID string) (*models.Question, error) {
	questionJSON, err := r.client.Get(ctx, questionKeyPrefix+questionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	var question models.Question
	if err := json.Unmarshal([]byte(questionJSON), &question); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question: %w", err)
	}

	return &question, nil
}

// CountQuestions returns the size of the global pool
func (r *redisRepository) CountQuestions(ctx context.Context, input *CountQuestionsInput) (int, error) {
	if input == nil {
		return 0, errors.New("input cannot be nil")
	}

	count, err := r.client.SCard(ctx, questionPoolKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return int(count), nil
}

func (r *redisRepository) getQuestions(ctx context.Context, ids []string) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		question, err := r.getQuestion(ctx, id)
		if err != nil {
			if errors.Is(err, ErrQuestionNotFound) {
				continue
			}
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// GetSelectionOptions returns the pending options for a room, sampling
// unused questions from the pool when none are pending
func (r *redisRepository) GetSelectionOptions(ctx context.Context, input *GetSelectionOptionsInput) ([]*models.Question, error) {
	if input == nil || input.RoomID == "" || input.Count <= 0 {
		return nil, errors.New("input, room ID and count cannot be empty")
	}

	statuses, err := r.client.HGetAll(ctx, roomQuestionsKey(input.RoomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room question statuses: %w", err)
	}

	var pending []string
	for id, status := range statuses {
		if models.QuestionStatus(status) == models.QuestionStatusSelectionOption {
			pending = append(pending, id)
		}
	}

	if len(pending) > 0 {
		return r.getQuestions(ctx, pending)
	}

	// Sample more than needed so questions already seen by the room can
	// be filtered out without a second round trip
	candidates, err := r.client.SRandMemberN(ctx, questionPoolKey, int64(input.Count+len(statuses))).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}

	var fresh []string
	for _, id := range candidates {
		if _, used := statuses[id]; used {
			continue
		}
		fresh = append(fresh, id)
		if len(fresh) == input.Count {
			break
		}
	}

	if len(fresh) == 0 {
		return nil, ErrNoQuestionsLeft
	}

	fields := make(map[string]interface{}, len(fresh))
	for _, id := range fresh {
		fields[id] = string(models.QuestionStatusSelectionOption)
	}
	if err := r.client.HSet(ctx, roomQuestionsKey(input.RoomID), fields).Err(); err != nil {
		return nil, fmt.Errorf("failed to persist selection options: %w", err)
	}

	return r.getQuestions(ctx, fresh)
}

// SelectQuestion marks one pending option selected and discards the rest
func (r *redisRepository) SelectQuestion(ctx context.Context, input *SelectQuestionInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return errors.New("input, room ID and question ID cannot be empty")
	}

	key := roomQuestionsKey(input.RoomID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		statuses, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get room question statuses: %w", err)
		}

		var discard []string
		for id, status := range statuses {
			switch models.QuestionStatus(status) {
			case models.QuestionStatusSelected:
				return ErrQuestionAlreadySelected
			case models.QuestionStatusSelectionOption:
				if id != input.QuestionID {
					discard = append(discard, id)
				}
			}
		}

		if models.QuestionStatus(statuses[input.QuestionID]) != models.QuestionStatusSelectionOption {
			return ErrQuestionNotOffered
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, input.QuestionID, string(models.QuestionStatusSelected))
			if len(discard) > 0 {
				pipe.HDel(ctx, key, discard...)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// GetSelectedQuestion retrieves the room's selected question
func (r *redisRepository) GetSelectedQuestion(ctx context.Context, input *GetSelectedQuestionInput) (*models.Question, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	statuses, err := r.client.HGetAll(ctx, roomQuestionsKey(input.RoomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room question statuses: %w", err)
	}

	for id, status := range statuses {
		if models.QuestionStatus(status) == models.QuestionStatusSelected {
			return r.getQuestion(ctx, id)
		}
	}

	return nil, ErrNoQuestionSelected
}

// ClearRoundQuestions marks the selected question played and drops any
// leftover selection options
func (r *redisRepository) ClearRoundQuestions(ctx context.Context, input *ClearRoundQuestionsInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	key := roomQuestionsKey(input.RoomID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		statuses, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get room question statuses: %w", err)
		}

		var discard []string
		var played []string
		for id, status := range statuses {
			switch models.QuestionStatus(status) {
			case models.QuestionStatusSelectionOption:
				discard = append(discard, id)
			case models.QuestionStatusSelected:
				played = append(played, id)
			}
		}

		if len(discard) == 0 && len(played) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(discard) > 0 {
				pipe.HDel(ctx, key, discard...)
			}
			for _, id := range played {
				pipe.HSet(ctx, key, id, string(models.QuestionStatusPlayed))
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}
