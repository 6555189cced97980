package room

// RoomError is a custom error type for room-related errors
type RoomError string

// Error implements the error interface
func (e RoomError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidVisibility     RoomError = "invalid room visibility"
	ErrInvalidVotingMethod   RoomError = "invalid voting method"
	ErrRoomNameTooLong       RoomError = "room name is too long"
	ErrInvalidToken          RoomError = "invalid room token"
	ErrNotRoomMember         RoomError = "user is not a member of this room"
	ErrMemberInactive        RoomError = "member is not active in this room"
	ErrCannotKickSelf        RoomError = "cannot vote to kick yourself"
	ErrNoEligibleReplacement RoomError = "no eligible member to take over the round role"
	ErrNilConfig             RoomError = "config cannot be nil"
	ErrNilRoomRepo           RoomError = "room repository cannot be nil"
	ErrNilUserRepo           RoomError = "user repository cannot be nil"
	ErrNilQuestionRepo       RoomError = "question repository cannot be nil"
	ErrNilAnswerRepo         RoomError = "answer repository cannot be nil"
	ErrNilMessageRepo        RoomError = "message repository cannot be nil"
	ErrNilChat               RoomError = "chat service cannot be nil"
	ErrNilClock              RoomError = "clock cannot be nil"
	ErrNilUUIDGenerator      RoomError = "uuid generator cannot be nil"
	ErrNilTokenGenerator     RoomError = "token generator cannot be nil"
	ErrNilShuffler           RoomError = "shuffler cannot be nil"
)
