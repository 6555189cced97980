package answer

import (
	"time"
)

// SubmitAnswerInput contains parameters for recording an answer
type SubmitAnswerInput struct {
	// RoomID is the room the answer belongs to
	RoomID string

	// QuestionID is the selected question being answered
	QuestionID string

	// AuthorID is the member who wrote the answer
	AuthorID string

	// Text is the answer body
	Text string
}

// GetAnswersInput contains parameters for retrieving answers
type GetAnswersInput struct {
	// RoomID is the room the answers belong to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// WithGuesses attaches each answer's guesses
	WithGuesses bool
}

// SetDisplayPositionsInput contains the shuffled position assignment
type SetDisplayPositionsInput struct {
	// RoomID is the room the answers belong to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// Positions maps author ID to assigned display position
	Positions map[string]int
}

// GetAnswerByPositionInput contains parameters for a position lookup
type GetAnswerByPositionInput struct {
	// RoomID is the room the answer belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// Position is the display position to look up
	Position int
}

// RevealAnswerInput contains parameters for revealing an answer
type RevealAnswerInput struct {
	// RoomID is the room the answer belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// Position is the display position to reveal
	Position int
}

// SetFavoriteStateInput contains parameters for the room favorite marker
type SetFavoriteStateInput struct {
	// RoomID is the room the answer belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// Position is the display position to mark favorite
	Position int
}

// PutGuessInput contains parameters for an author guess
type PutGuessInput struct {
	// RoomID is the room the answer belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// AuthorID is the true author of the guessed answer
	AuthorID string

	// GuesserID is the member making the guess
	GuesserID string

	// GuessedID is the member guessed to be the author
	GuessedID string
}

// PutGuessOutput contains the result of recording a guess
type PutGuessOutput struct {
	// Changed indicates whether the stored guess was created or revised;
	// false means an identical guess already existed
	Changed bool
}

// SetPersonalFavoriteInput contains parameters for a personal favorite
type SetPersonalFavoriteInput struct {
	// RoomID is the room the pick belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// UserID is the member making the pick
	UserID string

	// Position is the picked display position
	Position int

	// Now is when the pick was made; a moved pick keeps its original time
	Now time.Time
}

// ClearPersonalFavoriteInput contains parameters for removing a pick
type ClearPersonalFavoriteInput struct {
	// RoomID is the room the pick belongs to
	RoomID string

	// QuestionID is the selected question
	QuestionID string

	// UserID is the member whose pick is removed
	UserID string
}

// GetPersonalFavoritesInput contains parameters for listing picks
type GetPersonalFavoritesInput struct {
	// RoomID is the room the picks belong to
	RoomID string

	// QuestionID is the selected question
	QuestionID string
}

// ClearRoundInput contains parameters for the round cleanup
type ClearRoundInput struct {
	// RoomID is the room to clean up
	RoomID string

	// QuestionID is the question whose records are deleted
	QuestionID string
}
