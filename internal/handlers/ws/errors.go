package ws

import (
	"errors"

	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
	"github.com/guesswho-game/guesswho/internal/services/chat"
	"github.com/guesswho-game/guesswho/internal/services/game"
	"github.com/guesswho-game/guesswho/internal/services/identity"
	"github.com/guesswho-game/guesswho/internal/services/room"
)

// Error kinds carried in command acknowledgments. Race and transient
// failures may be retried by the client after re-reading state; the
// rest are final.
const (
	KindValidation    = "validation"
	KindAuthorization = "authorization"
	KindState         = "state"
	KindNotFound      = "not_found"
	KindRace          = "race"
	KindTransient     = "transient"
)

// ErrNotInRoom is returned for room-scoped commands issued before
// joining a room
const ErrNotInRoom = wsError("not in a room")

// ErrUnknownCommand is returned for command names with no handler
const ErrUnknownCommand = wsError("unknown command")

// ErrBadPayload is returned when a command payload does not match its
// schema
const ErrBadPayload = wsError("malformed command payload")

type wsError string

func (e wsError) Error() string {
	return string(e)
}

var validationErrs = []error{
	ErrBadPayload,
	ErrUnknownCommand,
	chat.ErrBodyTooShort,
	chat.ErrBodyTooLong,
	game.ErrQuestionTooShort,
	game.ErrQuestionTooLong,
	game.ErrAnswerTooShort,
	game.ErrGuessSelf,
	room.ErrInvalidVisibility,
	room.ErrInvalidVotingMethod,
	room.ErrRoomNameTooLong,
	room.ErrCannotKickSelf,
	identity.ErrInvalidName,
	identity.ErrNameTooShort,
	identity.ErrNameTooLong,
	identity.ErrNameHasSpaces,
	identity.ErrInvalidIcon,
}

var authorizationErrs = []error{
	identity.ErrMissingCredentials,
	identity.ErrInvalidToken,
	room.ErrInvalidToken,
	room.ErrNotRoomMember,
	chat.ErrNotMessageAuthor,
	chat.ErrProfileRequired,
	ErrNotInRoom,
}

var stateErrs = []error{
	game.ErrRoomState,
	game.ErrMemberState,
	game.ErrMemberInactive,
	game.ErrAnswerNotRevealed,
	game.ErrNoAnswers,
	game.ErrFavoriteRequired,
	game.ErrUnguessedAnswers,
	game.ErrNoWinner,
	game.ErrNoNextAsker,
	game.ErrNoEligibleSelector,
	room.ErrMemberInactive,
	room.ErrNoEligibleReplacement,
	roomRepo.ErrAlreadyMember,
	roomRepo.ErrAlreadyVoted,
	questionRepo.ErrQuestionNotOffered,
	questionRepo.ErrQuestionAlreadySelected,
	questionRepo.ErrNoQuestionSelected,
	questionRepo.ErrNoQuestionsLeft,
	answerRepo.ErrAlreadyAnswered,
	answerRepo.ErrAnswerState,
	messageRepo.ErrAlreadyLiked,
}

var notFoundErrs = []error{
	userRepo.ErrUserNotFound,
	roomRepo.ErrRoomNotFound,
	roomRepo.ErrMemberNotFound,
	questionRepo.ErrQuestionNotFound,
	answerRepo.ErrAnswerNotFound,
	messageRepo.ErrMessageNotFound,
}

var raceErrs = []error{
	roomRepo.ErrStateMismatch,
	roomRepo.ErrConflict,
	questionRepo.ErrConflict,
	answerRepo.ErrConflict,
	messageRepo.ErrConflict,
}

// classify maps a command failure onto the acknowledgment error
// taxonomy. Anything unrecognized is treated as transient
// infrastructure trouble.
func classify(err error) string {
	for _, e := range validationErrs {
		if errors.Is(err, e) {
			return KindValidation
		}
	}
	for _, e := range authorizationErrs {
		if errors.Is(err, e) {
			return KindAuthorization
		}
	}
	for _, e := range stateErrs {
		if errors.Is(err, e) {
			return KindState
		}
	}
	for _, e := range notFoundErrs {
		if errors.Is(err, e) {
			return KindNotFound
		}
	}
	for _, e := range raceErrs {
		if errors.Is(err, e) {
			return KindRace
		}
	}
	return KindTransient
}
