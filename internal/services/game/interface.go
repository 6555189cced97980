package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/guesswho-game/guesswho/internal/services/game Service

import (
	"context"
)

// Service is the interface for the round state machine: question
// selection, answer collection, the anonymized reveal/guess phase,
// scoring and rotation
type Service interface {
	// SuggestQuestion adds a player-suggested question to the global pool
	SuggestQuestion(ctx context.Context, input *SuggestQuestionInput) (*SuggestQuestionOutput, error)

	// SeedQuestions fills an empty question pool from a starter catalog.
	// A pool that already holds questions is left untouched.
	SeedQuestions(ctx context.Context, input *SeedQuestionsInput) (*SeedQuestionsOutput, error)

	// SubmitQuestion marks the selector's choice as this round's
	// question and moves the room to COLLECTING_ANSWERS
	SubmitQuestion(ctx context.Context, input *SubmitQuestionInput) (*SubmitQuestionOutput, error)

	// SubmitAnswer records a member's answer to the selected question
	SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) (*SubmitAnswerOutput, error)

	// StartReadingAnswers shuffles the answers of active members into
	// anonymized display positions and moves the room to READING_ANSWERS
	StartReadingAnswers(ctx context.Context, input *StartReadingAnswersInput) (*StartReadingAnswersOutput, error)

	// RevealAnswer flips the answer at a display position to REVEALED
	RevealAnswer(ctx context.Context, input *RevealAnswerInput) (*RevealAnswerOutput, error)

	// SetFavoriteAnswer records the reader's favorite pick
	SetFavoriteAnswer(ctx context.Context, input *SetFavoriteAnswerInput) (*SetFavoriteAnswerOutput, error)

	// ClearFavoriteAnswer removes the reader's favorite pick
	ClearFavoriteAnswer(ctx context.Context, input *ClearFavoriteAnswerInput) (*ClearFavoriteAnswerOutput, error)

	// MakeAuthorGuess records or revises a member's guess about who
	// wrote the answer at a display position
	MakeAuthorGuess(ctx context.Context, input *MakeAuthorGuessInput) (*MakeAuthorGuessOutput, error)

	// FinalizeGuesses closes the guessing phase: computes the
	// guess-correctness table, crowns the round winner and moves the
	// room to VIEWING_RESULTS
	FinalizeGuesses(ctx context.Context, input *FinalizeGuessesInput) (*FinalizeGuessesOutput, error)

	// ResetRound clears the round's records and drives the room back to
	// PICKING_QUESTION with a new selector chosen per the voting method
	ResetRound(ctx context.Context, input *ResetRoundInput) (*ResetRoundOutput, error)
}
