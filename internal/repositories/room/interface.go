package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/guesswho-game/guesswho/internal/repositories/room Repository

import (
	"context"

	"github.com/guesswho-game/guesswho/internal/models"
)

// Repository defines the interface for room and membership persistence
type Repository interface {
	// SaveRoom persists a room
	SaveRoom(ctx context.Context, input *SaveRoomInput) error

	// GetRoom retrieves a room by ID
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// DeleteRoom removes a room and its membership records. Used to
	// roll back a failed creation.
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error

	// ListPublicRooms retrieves public rooms active within the trailing
	// window, most recently active first
	ListPublicRooms(ctx context.Context, input *ListPublicRoomsInput) ([]*models.Room, error)

	// SetState transitions a room's round state. The write only applies
	// while the room still holds the expected state; a loser of a racing
	// transition gets ErrStateMismatch.
	SetState(ctx context.Context, input *SetStateInput) error

	// MarkActive refreshes the room's last-active timestamp
	MarkActive(ctx context.Context, input *MarkActiveInput) error

	// AddMember inserts a per-room membership projection
	AddMember(ctx context.Context, input *AddMemberInput) error

	// GetMember retrieves one membership projection
	GetMember(ctx context.Context, input *GetMemberInput) (*models.RoomMember, error)

	// GetMembers retrieves all membership projections for a room
	GetMembers(ctx context.Context, input *GetMembersInput) ([]*models.RoomMember, error)

	// SetMemberActive flips the active flag and sub-state of a member
	SetMemberActive(ctx context.Context, input *SetMemberActiveInput) error

	// SetMemberState updates a member's sub-state, optionally adjusting
	// the score, and returns the updated projection
	SetMemberState(ctx context.Context, input *SetMemberStateInput) (*models.RoomMember, error)

	// SetAllMemberStates resets every member of a room to one sub-state
	SetAllMemberStates(ctx context.Context, input *SetAllMemberStatesInput) error

	// RemoveMember deletes a membership projection
	RemoveMember(ctx context.Context, input *RemoveMemberInput) error

	// GetActiveRoomIDs lists the rooms a user is currently marked
	// active in
	GetActiveRoomIDs(ctx context.Context, input *GetActiveRoomIDsInput) ([]string, error)

	// PlaceKickVote records a kick vote and returns the updated voter
	// set for the target
	PlaceKickVote(ctx context.Context, input *PlaceKickVoteInput) ([]string, error)

	// GetKickVotes retrieves all outstanding kick votes for a room,
	// keyed by target user ID
	GetKickVotes(ctx context.Context, input *GetKickVotesInput) (map[string][]string, error)

	// ClearKickVotes removes all kick votes against a target
	ClearKickVotes(ctx context.Context, input *ClearKickVotesInput) error
}
