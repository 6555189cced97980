package question

import (
	"github.com/guesswho-game/guesswho/internal/models"
)

// AddQuestionInput contains parameters for inserting a question
type AddQuestionInput struct {
	// Question is the question to insert
	Question *models.Question
}

// GetQuestionInput contains parameters for retrieving a question
type GetQuestionInput struct {
	// QuestionID is the unique identifier of the question
	QuestionID string
}

// CountQuestionsInput contains parameters for counting the pool
type CountQuestionsInput struct{}

// GetSelectionOptionsInput contains parameters for the selection offer
type GetSelectionOptionsInput struct {
	// RoomID is the room the offer belongs to
	RoomID string

	// Count is the number of options to offer
	Count int
}

// SelectQuestionInput contains parameters for selecting a question
type SelectQuestionInput struct {
	// RoomID is the room the selection belongs to
	RoomID string

	// QuestionID is the chosen pending option
	QuestionID string
}

// GetSelectedQuestionInput contains parameters for the selected question
type GetSelectedQuestionInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// ClearRoundQuestionsInput contains parameters for the round cleanup
type ClearRoundQuestionsInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}
