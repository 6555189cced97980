package room

import (
	"time"

	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/token"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
	"github.com/guesswho-game/guesswho/internal/services/chat"
)

// Defaults applied by New when the corresponding Config field is zero
const (
	// DefaultListWindow is how far back the public listing looks
	DefaultListWindow = 15 * time.Minute

	// DefaultListLimit caps the public listing
	DefaultListLimit = 15

	// DefaultSelectionOptionCount is how many questions a selector is
	// offered
	DefaultSelectionOptionCount = 3

	// DefaultMessageWindow is how many recent messages a room snapshot
	// carries
	DefaultMessageWindow = 50
)

// MaxRoomNameLength bounds the optional room display name
const MaxRoomNameLength = 30

// Config holds configuration for the room service
type Config struct {
	// Repository dependencies
	RoomRepo     roomRepo.Repository
	UserRepo     userRepo.Repository
	QuestionRepo questionRepo.Repository
	AnswerRepo   answerRepo.Repository
	MessageRepo  messageRepo.Repository

	// Service dependencies
	Chat           chat.Service
	Clock          clock.Clock
	UUIDGenerator  uuid.UUID
	TokenGenerator token.Generator
	Shuffler       shuffle.Shuffler

	// Tunables; zero values fall back to the defaults above
	ListWindow           time.Duration
	ListLimit            int
	SelectionOptionCount int
	TokenLength          int
	MessageWindow        int
}

// View is the full client-facing snapshot of a room, assembled from
// the room record and its round-scoped extras
type View struct {
	// Room is the room record, join token included only for members
	Room *models.Room `json:"room"`

	// Members are the membership projections with names and icons filled
	// in from the user records
	Members []*models.RoomMember `json:"members,omitempty"`

	// Messages is the recent message window, oldest first. The oldest
	// loaded message is presented unchained since its anchor is outside
	// the window.
	Messages []*models.Message `json:"messages,omitempty"`

	// KickVotes maps target user ID to the users who voted against them
	KickVotes map[string][]string `json:"kickVotes,omitempty"`

	// SelectedQuestion is the question being played, nil outside a round
	SelectedQuestion *models.Question `json:"selectedQuestion,omitempty"`

	// Answers are the positioned answers in display order, stripped of
	// author identity
	Answers []models.Answer `json:"answers,omitempty"`

	// AnswerUserIDs are the members who submitted an answer this round,
	// in sorted order
	AnswerUserIDs []string `json:"answerUserIds,omitempty"`

	// FavoritePosition is the display position holding the room-wide
	// favorite marker, nil when none does
	FavoritePosition *int `json:"favoritePosition,omitempty"`

	// PersonalFavorites are the members' favorite picks, earliest first
	PersonalFavorites []*models.FavoriteAnswer `json:"personalFavorites,omitempty"`

	// GuessResults maps display position to whether the majority guess
	// matched the true author; present only in VIEWING_RESULTS
	GuessResults map[int]bool `json:"guessResults,omitempty"`
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	// UserID is the creator
	UserID string

	// Name is the optional display name of the room
	Name string

	// Visibility is public or private
	Visibility models.RoomVisibility

	// VotingMethod determines asker rotation between rounds
	VotingMethod models.VotingMethod
}

// CreateRoomOutput contains the created room
type CreateRoomOutput struct {
	// Room is the created room
	Room *models.Room

	// Member is the creator's membership, holding the selector role
	Member *models.RoomMember

	// Questions is the creator's question-selection offer
	Questions []*models.Question

	// Message is the creation system message, nil when the creator has
	// no profile yet
	Message *models.Message
}

// GetRoomInput contains parameters for retrieving a room
type GetRoomInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// WithMembers includes membership projections
	WithMembers bool

	// WithExtras includes the round snapshot: messages, kick votes, the
	// selected question, positioned answers and favorites
	WithExtras bool
}

// GetRoomOutput contains the assembled room snapshot
type GetRoomOutput struct {
	// View is the room snapshot
	View *View
}

// ListRoomsInput contains parameters for the public listing
type ListRoomsInput struct{}

// ListRoomsOutput contains the public room listing
type ListRoomsOutput struct {
	// Rooms are the listing projections, most recently active first
	Rooms []*models.RoomSummary
}

// JoinRoomInput contains parameters for joining a room
type JoinRoomInput struct {
	// RoomID is the room to join
	RoomID string

	// UserID is the joining user
	UserID string

	// Token is the join token, required for private rooms
	Token string
}

// JoinRoomOutput contains the result of joining a room
type JoinRoomOutput struct {
	// View is the full room snapshot for the joining connection
	View *View

	// Member is the joiner's membership projection
	Member *models.RoomMember

	// Rejoined indicates the user was already a member; any other
	// connection claiming this member should be forced out
	Rejoined bool

	// Message is the join system message, nil when none was generated
	Message *models.Message

	// Questions is the question-selection offer, present when the
	// joiner holds the selector role
	Questions []*models.Question
}

// LeaveRoomInput contains parameters for leaving a room
type LeaveRoomInput struct {
	// RoomID is the room to leave
	RoomID string

	// UserID is the departing user
	UserID string

	// LoggedOut indicates the connection was forced out by a newer one;
	// the membership stays active and no message is generated
	LoggedOut bool
}

// LeaveRoomOutput contains the result of leaving a room
type LeaveRoomOutput struct {
	// Left indicates the membership was deactivated
	Left bool

	// Message is the departure system message, nil when none was
	// generated
	Message *models.Message

	// Replacement is the member who received the departing member's
	// pivotal role, nil when no role needed reassignment
	Replacement *models.RoomMember

	// Questions is the fresh selection offer for a replacement selector
	Questions []*models.Question
}

// ActiveRoomsInput contains parameters for the active-room lookup
type ActiveRoomsInput struct {
	// UserID is the user whose active rooms are listed
	UserID string
}

// ActiveRoomsOutput contains the active-room lookup result
type ActiveRoomsOutput struct {
	// RoomIDs are the rooms the user is currently active in
	RoomIDs []string
}

// PlaceKickVoteInput contains parameters for a kick vote
type PlaceKickVoteInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// VoterID is the member placing the vote
	VoterID string

	// TargetID is the member being voted against
	TargetID string
}

// PlaceKickVoteOutput contains the result of a kick vote
type PlaceKickVoteOutput struct {
	// Voters are the members who have voted against the target
	Voters []string

	// Kicked indicates the vote reached a strict majority of active
	// members and the target was deactivated
	Kicked bool

	// Replacement is the member who received the target's pivotal role,
	// nil when no role needed reassignment
	Replacement *models.RoomMember

	// Questions is the fresh selection offer for a replacement selector
	Questions []*models.Question
}
