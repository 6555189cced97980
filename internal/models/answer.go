package models

// AnswerState represents the lifecycle of a submitted answer
type AnswerState string

const (
	// AnswerStateSubmitted indicates the answer is hidden, awaiting reveal
	AnswerStateSubmitted AnswerState = "submitted"

	// AnswerStateRevealed indicates the answer text is visible
	AnswerStateRevealed AnswerState = "revealed"

	// AnswerStateFavorite indicates the answer carries the room-wide
	// favorite marker. At most one answer per question holds this state.
	AnswerStateFavorite AnswerState = "favorite"
)

// Answer is one member's response to the selected question
type Answer struct {
	// RoomID is the room the answer belongs to
	RoomID string `json:"roomId,omitempty"`

	// QuestionID is the selected question being answered
	QuestionID string `json:"questionId,omitempty"`

	// AuthorID is the member who wrote the answer
	AuthorID string `json:"userId,omitempty"`

	// Text is the answer body
	Text string `json:"answer"`

	// State tracks whether the answer has been revealed or favorited
	State AnswerState `json:"state"`

	// DisplayPosition is the anonymized slot assigned at shuffle time,
	// nil before the shuffle
	DisplayPosition *int `json:"displayPosition,omitempty"`

	// Guesses are the author guesses registered against this answer
	Guesses []Guess `json:"guesses,omitempty"`
}

// Guess records one member's guess about an answer's author
type Guess struct {
	// UserID is the guessing member
	UserID string `json:"userId"`

	// GuessedID is the member guessed to be the author
	GuessedID string `json:"guessedUserId"`
}

// FavoriteAnswer is a member's personal favorite pick for the round
type FavoriteAnswer struct {
	// UserID is the member who made the pick
	UserID string `json:"userId,omitempty"`

	// DisplayPosition is the picked answer's display position
	DisplayPosition int `json:"displayPosition"`
}

// MajorityGuess returns the most frequently guessed author among the
// given guesses. Ties resolve to the guessed ID reached first in guess
// order, so callers passing guesses sorted by guesser get a stable
// result. Returns "" when there are no guesses.
func MajorityGuess(guesses []Guess) string {
	counts := make(map[string]int, len(guesses))
	best := ""
	bestCount := 0
	for _, g := range guesses {
		counts[g.GuessedID]++
		if counts[g.GuessedID] > bestCount {
			best = g.GuessedID
			bestCount = counts[g.GuessedID]
		}
	}
	return best
}

// StripAnswer returns a copy of the answer with author identity and
// guesses removed, and the text blanked while still unrevealed. The
// stripped form is what non-reader clients receive.
func StripAnswer(a Answer) Answer {
	if a.State == AnswerStateSubmitted {
		a.Text = ""
	}
	a.RoomID = ""
	a.QuestionID = ""
	a.AuthorID = ""
	a.Guesses = nil
	return a
}
