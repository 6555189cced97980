package models

import (
	"time"
)

// RoomVisibility controls whether a room is listed and whether joining
// requires a token
type RoomVisibility string

const (
	// RoomVisibilityPublic indicates a listed room anyone may join
	RoomVisibilityPublic RoomVisibility = "public"

	// RoomVisibilityPrivate indicates an unlisted room joined by token
	RoomVisibilityPrivate RoomVisibility = "private"
)

// Valid reports whether the visibility is a known value
func (v RoomVisibility) Valid() bool {
	return v == RoomVisibilityPublic || v == RoomVisibilityPrivate
}

// VotingMethod determines how the next asker is chosen after a round
type VotingMethod string

const (
	// VotingMethodWinner passes the asker role to the round winner
	VotingMethodWinner VotingMethod = "winner"

	// VotingMethodRotate rotates the asker role through active members
	VotingMethodRotate VotingMethod = "rotate"

	// VotingMethodDemocratic picks the next asker at random among
	// active, configured members
	VotingMethodDemocratic VotingMethod = "democratic"
)

// Valid reports whether the voting method is a known value
func (m VotingMethod) Valid() bool {
	return m == VotingMethodWinner || m == VotingMethodRotate || m == VotingMethodDemocratic
}

// RoomState represents the round phase of a room
type RoomState string

const (
	// RoomStatePickingQuestion indicates the selector is choosing a question
	RoomStatePickingQuestion RoomState = "picking_question"

	// RoomStateCollectingAnswers indicates members are submitting answers
	RoomStateCollectingAnswers RoomState = "collecting_answers"

	// RoomStateReadingAnswers indicates shuffled answers are being revealed
	RoomStateReadingAnswers RoomState = "reading_answers"

	// RoomStateViewingResults indicates guess results are on display
	RoomStateViewingResults RoomState = "viewing_results"
)

// Room represents a persisted game session
type Room struct {
	// ID is the unique identifier for the room
	ID string `json:"id"`

	// Name is the optional display name of the room
	Name string `json:"name,omitempty"`

	// Visibility is public or private
	Visibility RoomVisibility `json:"visibility"`

	// VotingMethod determines asker rotation between rounds
	VotingMethod VotingMethod `json:"votingMethod"`

	// Token is the join token, present only for private rooms
	Token string `json:"token,omitempty"`

	// State is the current round phase
	State RoomState `json:"state"`

	// LastActive is when the room last saw activity
	LastActive time.Time `json:"lastActive"`

	// CreatedAt is when the room was created
	CreatedAt time.Time `json:"createdAt"`
}

// RoomSummary is the listing projection of a public room
type RoomSummary struct {
	// ID is the unique identifier for the room
	ID string `json:"id"`

	// Name is the optional display name of the room
	Name string `json:"name,omitempty"`

	// VotingMethod determines asker rotation between rounds
	VotingMethod VotingMethod `json:"votingMethod"`

	// LastActive is the later of the room's last activity and its
	// most recent chat message
	LastActive time.Time `json:"lastActive"`

	// Players is the total number of members
	Players int `json:"players"`

	// ActivePlayers is the number of currently active members
	ActivePlayers int `json:"activePlayers"`
}
