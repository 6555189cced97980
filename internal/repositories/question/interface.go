package question

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/guesswho-game/guesswho/internal/repositories/question Repository

import (
	"context"

	"github.com/guesswho-game/guesswho/internal/models"
)

// Repository defines the interface for the question pool and room-scoped
// question statuses
type Repository interface {
	// AddQuestion inserts a question into the global pool
	AddQuestion(ctx context.Context, input *AddQuestionInput) error

	// GetQuestion retrieves a question by ID
	GetQuestion(ctx context.Context, input *GetQuestionInput) (*models.Question, error)

	// CountQuestions returns the size of the global pool
	CountQuestions(ctx context.Context, input *CountQuestionsInput) (int, error)

	// GetSelectionOptions returns the pending selection options for a
	// room, sampling fresh unused questions when none are pending
	GetSelectionOptions(ctx context.Context, input *GetSelectionOptionsInput) ([]*models.Question, error)

	// SelectQuestion marks one pending option as selected and discards
	// the others. At most one question per room is ever selected.
	SelectQuestion(ctx context.Context, input *SelectQuestionInput) error

	// GetSelectedQuestion retrieves the room's selected question
	GetSelectedQuestion(ctx context.Context, input *GetSelectedQuestionInput) (*models.Question, error)

	// ClearRoundQuestions marks the selected question played and drops
	// any leftover selection options
	ClearRoundQuestions(ctx context.Context, input *ClearRoundQuestionsInput) error
}
