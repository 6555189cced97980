package room

import (
	"time"

	"github.com/guesswho-game/guesswho/internal/models"
)

// SaveRoomInput contains parameters for persisting a room
type SaveRoomInput struct {
	// Room is the room to save
	Room *models.Room
}

// GetRoomInput contains parameters for retrieving a room
type GetRoomInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// DeleteRoomInput contains parameters for removing a room
type DeleteRoomInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// ListPublicRoomsInput contains parameters for listing public rooms
type ListPublicRoomsInput struct {
	// ActiveSince is the lower bound on last activity
	ActiveSince time.Time

	// Limit caps the number of rooms returned
	Limit int
}

// SetStateInput contains parameters for a guarded state transition
type SetStateInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// Expected is the state the room must currently hold
	Expected models.RoomState

	// Next is the state to transition to
	Next models.RoomState

	// Now refreshes the last-active timestamp
	Now time.Time
}

// MarkActiveInput contains parameters for refreshing room activity
type MarkActiveInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// Now is the new last-active timestamp
	Now time.Time
}

// AddMemberInput contains parameters for inserting a membership
type AddMemberInput struct {
	// Member is the projection to insert
	Member *models.RoomMember
}

// GetMemberInput contains parameters for retrieving a membership
type GetMemberInput struct {
	// RoomID is the room the membership belongs to
	RoomID string

	// UserID is the member's global identity
	UserID string
}

// GetMembersInput contains parameters for retrieving all memberships
type GetMembersInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// SetMemberActiveInput contains parameters for flipping the active flag
type SetMemberActiveInput struct {
	// RoomID is the room the membership belongs to
	RoomID string

	// UserID is the member's global identity
	UserID string

	// Active is the new active flag
	Active bool

	// State is the sub-state to set alongside the flag
	State models.MemberState
}

// SetMemberStateInput contains parameters for updating a sub-state
type SetMemberStateInput struct {
	// RoomID is the room the membership belongs to
	RoomID string

	// UserID is the member's global identity
	UserID string

	// State is the new sub-state
	State models.MemberState

	// ScoreDelta is added to the member's score
	ScoreDelta int
}

// SetAllMemberStatesInput contains parameters for a room-wide sub-state reset
type SetAllMemberStatesInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// State is the sub-state applied to every member
	State models.MemberState
}

// RemoveMemberInput contains parameters for deleting a membership
type RemoveMemberInput struct {
	// RoomID is the room the membership belongs to
	RoomID string

	// UserID is the member's global identity
	UserID string
}

// GetActiveRoomIDsInput contains parameters for the active-room index
type GetActiveRoomIDsInput struct {
	// UserID is the member's global identity
	UserID string
}

// PlaceKickVoteInput contains parameters for recording a kick vote
type PlaceKickVoteInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// VoterID is the member placing the vote
	VoterID string

	// TargetID is the member being voted against
	TargetID string
}

// GetKickVotesInput contains parameters for retrieving kick votes
type GetKickVotesInput struct {
	// RoomID is the unique identifier of the room
	RoomID string
}

// ClearKickVotesInput contains parameters for clearing kick votes
type ClearKickVotesInput struct {
	// RoomID is the unique identifier of the room
	RoomID string

	// TargetID is the member whose votes are cleared
	TargetID string
}
