package models

// MemberState represents a member's sub-state within a round
type MemberState string

const (
	// MemberStateIdle indicates the member has nothing pending
	MemberStateIdle MemberState = "idle"

	// MemberStateSelectingQuestion indicates the member is choosing
	// between question options
	MemberStateSelectingQuestion MemberState = "selecting_question"

	// MemberStateAnsweringQuestion indicates the member owes an answer
	MemberStateAnsweringQuestion MemberState = "answering_question"

	// MemberStateAskingQuestion indicates the member asked the current
	// question and is waiting for answers
	MemberStateAskingQuestion MemberState = "asking_question"

	// MemberStateReadingAnswers indicates the member is revealing the
	// shuffled answers
	MemberStateReadingAnswers MemberState = "reading_answers"

	// MemberStateAskedQuestion indicates the member's question was just
	// played out
	MemberStateAskedQuestion MemberState = "asked_question"

	// MemberStateWinner indicates the member won the last round
	MemberStateWinner MemberState = "winner"

	// MemberStateAskingNext indicates the member asks the next question
	// under rotate voting
	MemberStateAskingNext MemberState = "asking_next"
)

// PivotalStates are the sub-states whose holder must be replaced when
// they leave the room, or the round cannot proceed.
var PivotalStates = []MemberState{
	MemberStateSelectingQuestion,
	MemberStateAskingQuestion,
	MemberStateReadingAnswers,
	MemberStateWinner,
	MemberStateAskingNext,
}

// Pivotal reports whether the state holds a round role that needs
// reassignment on departure.
func (s MemberState) Pivotal() bool {
	for _, p := range PivotalStates {
		if s == p {
			return true
		}
	}
	return false
}

// RoomMember is a user's per-room projection
type RoomMember struct {
	// UserID is the global identity of the member
	UserID string `json:"userId"`

	// RoomID is the room this membership belongs to
	RoomID string `json:"roomId"`

	// Name is the member's display name, filled from the user record
	Name string `json:"name,omitempty"`

	// Icon is the member's profile icon, filled from the user record
	Icon *Icon `json:"icon,omitempty"`

	// Active indicates whether a connection currently represents the member
	Active bool `json:"active"`

	// State is the member's round sub-state
	State MemberState `json:"state"`

	// Score is the member's accumulated score in this room
	Score int `json:"score"`
}

// Configured reports whether the member has a display name and icon
func (m *RoomMember) Configured() bool {
	return m != nil && m.Name != "" && m.Icon != nil
}
