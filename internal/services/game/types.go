package game

import (
	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// DefaultSelectionOptionCount is how many questions a selector is
// offered
const DefaultSelectionOptionCount = 3

// MaxQuestionLength bounds suggested question text
const MaxQuestionLength = 200

// Config holds configuration for the game service
type Config struct {
	// Repository dependencies
	RoomRepo     roomRepo.Repository
	UserRepo     userRepo.Repository
	QuestionRepo questionRepo.Repository
	AnswerRepo   answerRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Shuffler      shuffle.Shuffler

	// SelectionOptionCount overrides the selection offer size; zero
	// falls back to the default
	SelectionOptionCount int
}

// SuggestQuestionInput contains parameters for a question suggestion
type SuggestQuestionInput struct {
	// UserID is the suggesting user
	UserID string

	// Text is the suggested question
	Text string
}

// SuggestQuestionOutput contains the stored suggestion
type SuggestQuestionOutput struct {
	// QuestionID is the ID assigned to the new question
	QuestionID string
}

// SeedQuestionsInput contains the starter catalog texts
type SeedQuestionsInput struct {
	// Texts are the catalog question texts, one per question
	Texts []string
}

// SeedQuestionsOutput contains the seeding result
type SeedQuestionsOutput struct {
	// Added is how many questions were inserted; zero when the pool was
	// already populated
	Added int
}

// SubmitQuestionInput contains parameters for selecting a question
type SubmitQuestionInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the selector
	UserID string

	// QuestionID is the chosen pending option
	QuestionID string
}

// SubmitQuestionOutput contains the selected question
type SubmitQuestionOutput struct {
	// Question is the question now being played
	Question *models.Question

	// SelectedBy is the selector, now holding the asker role
	SelectedBy string
}

// SubmitAnswerInput contains parameters for submitting an answer
type SubmitAnswerInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the answering member
	UserID string

	// Text is the answer body
	Text string
}

// SubmitAnswerOutput contains the member's post-submit sub-state
type SubmitAnswerOutput struct {
	// State is the member's sub-state after submitting
	State models.MemberState
}

// StartReadingAnswersInput contains parameters for the shuffle
type StartReadingAnswersInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the asker triggering the reveal phase
	UserID string
}

// StartReadingAnswersOutput contains the anonymized shuffled answers
type StartReadingAnswersOutput struct {
	// Answers are the positioned answers in display order, stripped of
	// author identity
	Answers []models.Answer

	// AnswerUserIDs are the members whose answers are in play, in
	// sorted order
	AnswerUserIDs []string
}

// RevealAnswerInput contains parameters for revealing an answer
type RevealAnswerInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the reader
	UserID string

	// Position is the display position to reveal
	Position int
}

// RevealAnswerOutput contains the revealed answer
type RevealAnswerOutput struct {
	// Answer is the revealed answer, still stripped of author identity
	Answer models.Answer
}

// SetFavoriteAnswerInput contains parameters for the reader's favorite
type SetFavoriteAnswerInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the reader
	UserID string

	// Position is the picked display position
	Position int
}

// SetFavoriteAnswerOutput contains the recorded pick
type SetFavoriteAnswerOutput struct {
	// Position is the picked display position
	Position int
}

// ClearFavoriteAnswerInput contains parameters for removing the pick
type ClearFavoriteAnswerInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the reader
	UserID string
}

// ClearFavoriteAnswerOutput contains the result of removing the pick
type ClearFavoriteAnswerOutput struct{}

// MakeAuthorGuessInput contains parameters for an author guess
type MakeAuthorGuessInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the guessing member
	UserID string

	// Position is the display position being guessed
	Position int

	// GuessedID is the member guessed to be the author
	GuessedID string
}

// MakeAuthorGuessOutput contains the recorded guess
type MakeAuthorGuessOutput struct {
	// Position is the display position guessed
	Position int

	// GuessedID is the member guessed to be the author
	GuessedID string

	// Changed indicates whether the guess was created or revised;
	// false means an identical guess already existed
	Changed bool
}

// FinalizeGuessesInput contains parameters for closing the guess phase
type FinalizeGuessesInput struct {
	// RoomID is the room playing the round
	RoomID string

	// UserID is the reader
	UserID string
}

// FinalizeGuessesOutput contains the round results
type FinalizeGuessesOutput struct {
	// GuessResults maps display position to whether the majority guess
	// matched the true author
	GuessResults map[int]bool

	// WinnerID is the author of the favorite-marked answer
	WinnerID string

	// AskingNextID is the next asker under ROTATE voting, empty
	// otherwise
	AskingNextID string
}

// ResetRoundInput contains parameters for starting a new round
type ResetRoundInput struct {
	// RoomID is the room to reset
	RoomID string

	// UserID is the member triggering the reset
	UserID string
}

// ResetRoundOutput contains the new round's setup
type ResetRoundOutput struct {
	// SelectorID is the member now choosing the next question
	SelectorID string

	// Questions is the new selector's question offer
	Questions []*models.Question
}
