package game

// GameError is a custom error type for round-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrQuestionTooShort   GameError = "question text is too short"
	ErrQuestionTooLong    GameError = "question text is too long"
	ErrAnswerTooShort     GameError = "answer must be at least one character"
	ErrRoomState          GameError = "room is not in the required state"
	ErrMemberState        GameError = "member is not in the required state"
	ErrMemberInactive     GameError = "member is not active in this room"
	ErrAnswerNotRevealed  GameError = "answer has not been revealed"
	ErrGuessSelf          GameError = "cannot guess yourself as the author"
	ErrNoAnswers          GameError = "no answers from active members"
	ErrFavoriteRequired   GameError = "a favorite answer is required to finish guessing"
	ErrUnguessedAnswers   GameError = "every answer needs at least one guess"
	ErrNoWinner           GameError = "failed to determine a round winner"
	ErrNoNextAsker        GameError = "no eligible member to ask the next question"
	ErrNoEligibleSelector GameError = "no eligible member to select the next question"
	ErrNilConfig          GameError = "config cannot be nil"
	ErrNilRoomRepo        GameError = "room repository cannot be nil"
	ErrNilUserRepo        GameError = "user repository cannot be nil"
	ErrNilQuestionRepo    GameError = "question repository cannot be nil"
	ErrNilAnswerRepo      GameError = "answer repository cannot be nil"
	ErrNilClock           GameError = "clock cannot be nil"
	ErrNilUUIDGenerator   GameError = "uuid generator cannot be nil"
	ErrNilShuffler        GameError = "shuffler cannot be nil"
)
