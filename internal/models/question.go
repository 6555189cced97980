package models

// QuestionStatus represents a question's room-scoped status, distinct
// from the question text itself
type QuestionStatus string

const (
	// QuestionStatusSelectionOption indicates the question is one of the
	// pending options offered to the selector
	QuestionStatusSelectionOption QuestionStatus = "selection_option"

	// QuestionStatusSelected indicates the question is being played this
	// round. At most one question per room holds this status.
	QuestionStatusSelected QuestionStatus = "selected"

	// QuestionStatusPlayed indicates the question was already used in
	// this room and must not be offered again
	QuestionStatusPlayed QuestionStatus = "played"
)

// Question is a prompt from the global question pool
type Question struct {
	// ID is the unique identifier for the question
	ID string `json:"id"`

	// Text is the prompt shown to players
	Text string `json:"question"`
}
