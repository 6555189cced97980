package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/guesswho-game/guesswho/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	answersKeyPrefix   = "answers:"
	guessesKeyPrefix   = "answer_guesses:"
	favoritesKeyPrefix = "favorite_answers:"
)

// Define errors
var (
	// ErrAnswerNotFound is returned when no answer exists at a position
	ErrAnswerNotFound = errors.New("answer not found")

	// ErrAlreadyAnswered is returned when a member submits a second
	// answer to the same question
	ErrAlreadyAnswered = errors.New("answer already submitted")

	// ErrAnswerState is returned when an answer is not in the state a
	// transition requires
	ErrAnswerState = errors.New("unexpected answer state")

	// ErrConflict is returned when a guarded write lost to a concurrent
	// writer and should be retried after a re-read
	ErrConflict = errors.New("concurrent update conflict")
)

// Config holds configuration for the Redis answer repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed answer repository
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

func answersKey(roomID, questionID string) string {
	return answersKeyPrefix + roomID + ":" + questionID
}

func guessesKey(roomID, questionID, authorID string) string {
	return guessesKeyPrefix + roomID + ":" + questionID + ":" + authorID
}

func favoritesKey(roomID, questionID string) string {
	return favoritesKeyPrefix + roomID + ":" + questionID
}

// answerRecord is the stored form of an answer; room, question and
// author live in the key
type answerRecord struct {
	Text            string             `json:"answer"`
	State           models.AnswerState `json:"state"`
	DisplayPosition *int               `json:"displayPosition,omitempty"`
}

// favoriteRecord is the stored form of a personal favorite pick
type favoriteRecord struct {
	Position int       `json:"displayPosition"`
	Since    time.Time `json:"since"`
}

func (r *redisRepository) toModel(roomID, questionID, authorID string, rec *answerRecord) *models.Answer {
	return &models.Answer{
		RoomID:          roomID,
		QuestionID:      questionID,
		AuthorID:        authorID,
		Text:            rec.Text,
		State:           rec.State,
		DisplayPosition: rec.DisplayPosition,
	}
}

// SubmitAnswer records one member's answer
func (r *redisRepository) SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" || input.AuthorID == "" {
		return errors.New("input, room ID, question ID and author ID cannot be empty")
	}

	rec := answerRecord{
		Text:  input.Text,
		State: models.AnswerStateSubmitted,
	}
	recJSON, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	added, err := r.client.HSetNX(ctx, answersKey(input.RoomID, input.QuestionID), input.AuthorID, recJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to submit answer: %w", err)
	}
	if !added {
		return ErrAlreadyAnswered
	}

	return nil
}

func (r *redisRepository) getRecords(ctx context.Context, c redis.Cmdable, roomID, questionID string) (map[string]*answerRecord, error) {
	entries, err := c.HGetAll(ctx, answersKey(roomID, questionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	records := make(map[string]*answerRecord, len(entries))
	for authorID, recJSON := range entries {
		var rec answerRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer for %s: %w", authorID, err)
		}
		records[authorID] = &rec
	}

	return records, nil
}

// GetAnswers retrieves all answers for a question. Positioned answers
// come first, in position order; unpositioned ones follow in author
// order for a stable result.
func (r *redisRepository) GetAnswers(ctx context.Context, input *GetAnswersInput) ([]*models.Answer, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return nil, errors.New("input, room ID and question ID cannot be empty")
	}

	records, err := r.getRecords(ctx, r.client, input.RoomID, input.QuestionID)
	if err != nil {
		return nil, err
	}

	answers := make([]*models.Answer, 0, len(records))
	for authorID, rec := range records {
		answers = append(answers, r.toModel(input.RoomID, input.QuestionID, authorID, rec))
	}

	sort.Slice(answers, func(i, j int) bool {
		pi, pj := answers[i].DisplayPosition, answers[j].DisplayPosition
		switch {
		case pi != nil && pj != nil:
			return *pi < *pj
		case pi != nil:
			return true
		case pj != nil:
			return false
		default:
			return answers[i].AuthorID < answers[j].AuthorID
		}
	})

	if input.WithGuesses {
		for _, a := range answers {
			guesses, err := r.getGuesses(ctx, input.RoomID, input.QuestionID, a.AuthorID)
			if err != nil {
				return nil, err
			}
			a.Guesses = guesses
		}
	}

	return answers, nil
}

func (r *redisRepository) getGuesses(ctx context.Context, roomID, questionID, authorID string) ([]models.Guess, error) {
	entries, err := r.client.HGetAll(ctx, guessesKey(roomID, questionID, authorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get guesses: %w", err)
	}

	guesses := make([]models.Guess, 0, len(entries))
	for guesserID, guessedID := range entries {
		guesses = append(guesses, models.Guess{
			UserID:    guesserID,
			GuessedID: guessedID,
		})
	}

	// Stable order so majority ties resolve the same way on every read
	sort.Slice(guesses, func(i, j int) bool {
		return guesses[i].UserID < guesses[j].UserID
	})

	return guesses, nil
}

// SetDisplayPositions persists the shuffled display positions
func (r *redisRepository) SetDisplayPositions(ctx context.Context, input *SetDisplayPositionsInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return errors.New("input, room ID and question ID cannot be empty")
	}

	key := answersKey(input.RoomID, input.QuestionID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		records, err := r.getRecords(ctx, tx, input.RoomID, input.QuestionID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{}, len(input.Positions))
		for authorID, pos := range input.Positions {
			rec, ok := records[authorID]
			if !ok {
				return ErrAnswerNotFound
			}
			p := pos
			rec.DisplayPosition = &p

			recJSON, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal answer: %w", err)
			}
			updates[authorID] = recJSON
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, updates)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func findByPosition(records map[string]*answerRecord, position int) (string, *answerRecord) {
	for authorID, rec := range records {
		if rec.DisplayPosition != nil && *rec.DisplayPosition == position {
			return authorID, rec
		}
	}
	return "", nil
}

// GetAnswerByPosition retrieves the answer at a display position
func (r *redisRepository) GetAnswerByPosition(ctx context.Context, input *GetAnswerByPositionInput) (*models.Answer, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return nil, errors.New("input, room ID and question ID cannot be empty")
	}

	records, err := r.getRecords(ctx, r.client, input.RoomID, input.QuestionID)
	if err != nil {
		return nil, err
	}

	authorID, rec := findByPosition(records, input.Position)
	if rec == nil {
		return nil, ErrAnswerNotFound
	}

	return r.toModel(input.RoomID, input.QuestionID, authorID, rec), nil
}

// RevealAnswer flips the answer at a position from SUBMITTED to REVEALED
func (r *redisRepository) RevealAnswer(ctx context.Context, input *RevealAnswerInput) (*models.Answer, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return nil, errors.New("input, room ID and question ID cannot be empty")
	}

	key := answersKey(input.RoomID, input.QuestionID)
	var revealed *models.Answer

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		records, err := r.getRecords(ctx, tx, input.RoomID, input.QuestionID)
		if err != nil {
			return err
		}

		authorID, rec := findByPosition(records, input.Position)
		if rec == nil {
			return ErrAnswerNotFound
		}
		if rec.State != models.AnswerStateSubmitted {
			return ErrAnswerState
		}

		rec.State = models.AnswerStateRevealed
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, authorID, recJSON)
			return nil
		})
		if err != nil {
			return err
		}

		revealed = r.toModel(input.RoomID, input.QuestionID, authorID, rec)
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return revealed, nil
}

// SetFavoriteState moves the room-wide favorite marker to one answer
func (r *redisRepository) SetFavoriteState(ctx context.Context, input *SetFavoriteStateInput) (*models.Answer, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return nil, errors.New("input, room ID and question ID cannot be empty")
	}

	key := answersKey(input.RoomID, input.QuestionID)
	var favorite *models.Answer

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		records, err := r.getRecords(ctx, tx, input.RoomID, input.QuestionID)
		if err != nil {
			return err
		}

		targetID, target := findByPosition(records, input.Position)
		if target == nil {
			return ErrAnswerNotFound
		}
		if target.State == models.AnswerStateSubmitted {
			return ErrAnswerState
		}

		updates := make(map[string]interface{})
		for authorID, rec := range records {
			if authorID != targetID && rec.State == models.AnswerStateFavorite {
				rec.State = models.AnswerStateRevealed
				recJSON, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("failed to marshal answer: %w", err)
				}
				updates[authorID] = recJSON
			}
		}

		target.State = models.AnswerStateFavorite
		targetJSON, err := json.Marshal(target)
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		updates[targetID] = targetJSON

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, updates)
			return nil
		})
		if err != nil {
			return err
		}

		favorite = r.toModel(input.RoomID, input.QuestionID, targetID, target)
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// PutGuess records or revises a member's author guess for an answer
func (r *redisRepository) PutGuess(ctx context.Context, input *PutGuessInput) (*PutGuessOutput, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" || input.AuthorID == "" || input.GuesserID == "" {
		return nil, errors.New("input, room ID, question ID, author ID and guesser ID cannot be empty")
	}

	key := guessesKey(input.RoomID, input.QuestionID, input.AuthorID)

	existing, err := r.client.HGet(ctx, key, input.GuesserID).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get existing guess: %w", err)
	}
	if err == nil && existing == input.GuessedID {
		return &PutGuessOutput{Changed: false}, nil
	}

	if err := r.client.HSet(ctx, key, input.GuesserID, input.GuessedID).Err(); err != nil {
		return nil, fmt.Errorf("failed to put guess: %w", err)
	}

	return &PutGuessOutput{Changed: true}, nil
}

// SetPersonalFavorite records or moves a member's personal favorite
func (r *redisRepository) SetPersonalFavorite(ctx context.Context, input *SetPersonalFavoriteInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" || input.UserID == "" {
		return errors.New("input, room ID, question ID and user ID cannot be empty")
	}

	key := favoritesKey(input.RoomID, input.QuestionID)

	since := input.Now
	existing, err := r.client.HGet(ctx, key, input.UserID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to get existing favorite: %w", err)
	}
	if err == nil {
		var rec favoriteRecord
		if err := json.Unmarshal([]byte(existing), &rec); err != nil {
			return fmt.Errorf("failed to unmarshal favorite: %w", err)
		}
		if rec.Position == input.Position {
			return nil
		}
		// A moved pick keeps its original registration time
		since = rec.Since
	}

	recJSON, err := json.Marshal(&favoriteRecord{
		Position: input.Position,
		Since:    since,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal favorite: %w", err)
	}

	if err := r.client.HSet(ctx, key, input.UserID, recJSON).Err(); err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	return nil
}

// ClearPersonalFavorite removes a member's personal favorite
func (r *redisRepository) ClearPersonalFavorite(ctx context.Context, input *ClearPersonalFavoriteInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" || input.UserID == "" {
		return errors.New("input, room ID, question ID and user ID cannot be empty")
	}

	if err := r.client.HDel(ctx, favoritesKey(input.RoomID, input.QuestionID), input.UserID).Err(); err != nil {
		return fmt.Errorf("failed to clear favorite: %w", err)
	}

	return nil
}

// GetPersonalFavorites retrieves personal favorites, earliest pick first
func (r *redisRepository) GetPersonalFavorites(ctx context.Context, input *GetPersonalFavoritesInput) ([]*models.FavoriteAnswer, error) {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return nil, errors.New("input, room ID and question ID cannot be empty")
	}

	entries, err := r.client.HGetAll(ctx, favoritesKey(input.RoomID, input.QuestionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	type pick struct {
		fav   *models.FavoriteAnswer
		since time.Time
	}

	picks := make([]pick, 0, len(entries))
	for userID, recJSON := range entries {
		var rec favoriteRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal favorite for %s: %w", userID, err)
		}
		picks = append(picks, pick{
			fav: &models.FavoriteAnswer{
				UserID:          userID,
				DisplayPosition: rec.Position,
			},
			since: rec.Since,
		})
	}

	sort.Slice(picks, func(i, j int) bool {
		if picks[i].since.Equal(picks[j].since) {
			return picks[i].fav.UserID < picks[j].fav.UserID
		}
		return picks[i].since.Before(picks[j].since)
	})

	favorites := make([]*models.FavoriteAnswer, 0, len(picks))
	for _, p := range picks {
		favorites = append(favorites, p.fav)
	}

	return favorites, nil
}

// ClearRound deletes all answers, guesses and favorites for a question
func (r *redisRepository) ClearRound(ctx context.Context, input *ClearRoundInput) error {
	if input == nil || input.RoomID == "" || input.QuestionID == "" {
		return errors.New("input, room ID and question ID cannot be empty")
	}

	authors, err := r.client.HKeys(ctx, answersKey(input.RoomID, input.QuestionID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to list answers for cleanup: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, answersKey(input.RoomID, input.QuestionID))
	pipe.Del(ctx, favoritesKey(input.RoomID, input.QuestionID))
	for _, authorID := range authors {
		pipe.Del(ctx, guessesKey(input.RoomID, input.QuestionID, authorID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear round: %w", err)
	}

	return nil
}
