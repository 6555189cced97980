package room

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/guesswho-game/guesswho/internal/services/room Service

import (
	"context"
)

// Service is the interface for room lifecycle, membership and presence
type Service interface {
	// CreateRoom creates a room with the creator as its first member and
	// selector. A failure partway through rolls the room back.
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// GetRoom retrieves a room, optionally with its members and the full
	// round snapshot clients render from
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// ListRooms lists public rooms active within the trailing window,
	// most recently active first
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)

	// JoinRoom adds a user to a room, or reactivates an existing
	// membership. A rejoin forces any stale connection for the same
	// member out.
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error)

	// LeaveRoom deactivates a membership. A departing pivotal role
	// holder is replaced at random among the remaining eligible members;
	// if nobody is eligible the leave still applies and
	// ErrNoEligibleReplacement is returned alongside the output.
	LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error)

	// PlaceKickVote records a vote to kick a member. A strict majority
	// of the room's active members deactivates the target.
	PlaceKickVote(ctx context.Context, input *PlaceKickVoteInput) (*PlaceKickVoteOutput, error)

	// ActiveRooms lists the rooms a user is currently active in
	ActiveRooms(ctx context.Context, input *ActiveRoomsInput) (*ActiveRoomsOutput, error)
}
