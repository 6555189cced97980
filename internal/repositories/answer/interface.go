package answer

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/guesswho-game/guesswho/internal/repositories/answer Repository

import (
	"context"

	"github.com/guesswho-game/guesswho/internal/models"
)

// Repository defines the interface for answers, author guesses and
// favorite picks, all scoped to a room + question pair
type Repository interface {
	// SubmitAnswer records one member's answer. A member answers a
	// question at most once.
	SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) error

	// GetAnswers retrieves all answers for a question, optionally with
	// their guesses attached
	GetAnswers(ctx context.Context, input *GetAnswersInput) ([]*models.Answer, error)

	// SetDisplayPositions persists the shuffled display positions,
	// keyed by author
	SetDisplayPositions(ctx context.Context, input *SetDisplayPositionsInput) error

	// GetAnswerByPosition retrieves the answer at a display position
	GetAnswerByPosition(ctx context.Context, input *GetAnswerByPositionInput) (*models.Answer, error)

	// RevealAnswer flips the answer at a position from SUBMITTED to
	// REVEALED; any other starting state fails
	RevealAnswer(ctx context.Context, input *RevealAnswerInput) (*models.Answer, error)

	// SetFavoriteState moves the room-wide favorite marker to the answer
	// at a position, clearing it from any other answer
	SetFavoriteState(ctx context.Context, input *SetFavoriteStateInput) (*models.Answer, error)

	// PutGuess records or revises a member's author guess for an answer.
	// Reissuing an identical guess is a no-op.
	PutGuess(ctx context.Context, input *PutGuessInput) (*PutGuessOutput, error)

	// SetPersonalFavorite records or moves a member's personal favorite
	SetPersonalFavorite(ctx context.Context, input *SetPersonalFavoriteInput) error

	// ClearPersonalFavorite removes a member's personal favorite
	ClearPersonalFavorite(ctx context.Context, input *ClearPersonalFavoriteInput) error

	// GetPersonalFavorites retrieves personal favorites for a question,
	// earliest pick first
	GetPersonalFavorites(ctx context.Context, input *GetPersonalFavoritesInput) ([]*models.FavoriteAnswer, error)

	// ClearRound deletes all answers, guesses and favorites for a
	// room + question pair
	ClearRound(ctx context.Context, input *ClearRoundInput) error
}
