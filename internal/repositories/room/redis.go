package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/guesswho-game/guesswho/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix        = "room:"
	membersKeyPrefix     = "room:members:"
	activeRoomsKeyPrefix = "user:active_rooms:"
	kickVotesKeyPrefix   = "room:kick_votes:"
	kickTargetsKeyPrefix = "room:kick_targets:"
	publicRoomsKey       = "rooms:public"
)

// Define errors
var (
	// ErrRoomNotFound is returned when a room is not found
	ErrRoomNotFound = errors.New("room not found")

	// ErrMemberNotFound is returned when a membership is not found
	ErrMemberNotFound = errors.New("member not found")

	// ErrAlreadyMember is returned when inserting a membership that exists
	ErrAlreadyMember = errors.New("user is already a room member")

	// ErrStateMismatch is returned when a guarded transition found the
	// room in a different state than expected
	ErrStateMismatch = errors.New("room state did not match expected state")

	// ErrConflict is returned when a guarded write lost to a concurrent
	// writer and should be retried after a re-read
	ErrConflict = errors.New("concurrent update conflict")

	// ErrAlreadyVoted is returned when a voter places a second kick vote
	// against the same target
	ErrAlreadyVoted = errors.New("kick vote already placed")
)

// Config holds configuration for the Redis room repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed room repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func roomKey(roomID string) string    { return roomKeyPrefix + roomID }
func membersKey(roomID string) string { return membersKeyPrefix + roomID }

// SaveRoom persists a room to Redis
func (r *redisRepository) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	roomJSON, err := json.Marshal(input.Room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, roomKey(input.Room.ID), roomJSON, 0)

	// Public rooms show up in the listing index, scored by activity
	if input.Room.Visibility == models.RoomVisibilityPublic {
		pipe.ZAdd(ctx, publicRoomsKey, redis.Z{
			Score:  float64(input.Room.LastActive.Unix()),
			Member: input.Room.ID,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by ID from Redis
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return r.getRoom(ctx, r.client, input.RoomID)
}

func (r *redisRepository) getRoom(ctx context.Context, c redis.Cmdable, roomID string) (*models.Room, error) {
	roomJSON, err := c.Get(ctx, roomKey(roomID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room models.Room
	if err := json.Unmarshal([]byte(roomJSON), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// DeleteRoom removes a room, its memberships and its listing entry
func (r *redisRepository) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	members, err := r.client.HKeys(ctx, membersKey(input.RoomID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to list members for delete: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, roomKey(input.RoomID))
	pipe.Del(ctx, membersKey(input.RoomID))
	pipe.ZRem(ctx, publicRoomsKey, input.RoomID)
	for _, userID := range members {
		pipe.SRem(ctx, activeRoomsKeyPrefix+userID, input.RoomID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

// ListPublicRooms retrieves public rooms active within the window,
// most recently active first
func (r *redisRepository) ListPublicRooms(ctx context.Context, input *ListPublicRoomsInput) ([]*models.Room, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	ids, err := r.client.ZRevRangeByScore(ctx, publicRoomsKey, &redis.ZRangeBy{
		Min:   strconv.FormatInt(input.ActiveSince.Unix(), 10),
		Max:   "+inf",
		Count: int64(input.Limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list public rooms: %w", err)
	}

	rooms := make([]*models.Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.getRoom(ctx, r.client, id)
		if err != nil {
			// Listing entry outlived the room
			if errors.Is(err, ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, nil
}

// SetState transitions a room's round state with an expected-state guard
func (r *redisRepository) SetState(ctx context.Context, input *SetStateInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	key := roomKey(input.RoomID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		room, err := r.getRoom(ctx, tx, input.RoomID)
		if err != nil {
			return err
		}

		if room.State != input.Expected {
			return ErrStateMismatch
		}

		room.State = input.Next
		room.LastActive = input.Now

		roomJSON, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, roomJSON, 0)
			if room.Visibility == models.RoomVisibilityPublic {
				pipe.ZAdd(ctx, publicRoomsKey, redis.Z{
					Score:  float64(room.LastActive.Unix()),
					Member: room.ID,
				})
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// MarkActive refreshes the room's last-active timestamp
func (r *redisRepository) MarkActive(ctx context.Context, input *MarkActiveInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	key := roomKey(input.RoomID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		room, err := r.getRoom(ctx, tx, input.RoomID)
		if err != nil {
			return err
		}

		room.LastActive = input.Now

		roomJSON, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, roomJSON, 0)
			if room.Visibility == models.RoomVisibilityPublic {
				pipe.ZAdd(ctx, publicRoomsKey, redis.Z{
					Score:  float64(room.LastActive.Unix()),
					Member: room.ID,
				})
			}
			return nil
		})
		return err
	}, key)

	// A concurrent room write carries its own timestamp, so the refresh
	// losing that race changes nothing
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// AddMember inserts a membership projection. Display name and icon are
// not stored here; they live on the user record.
func (r *redisRepository) AddMember(ctx context.Context, input *AddMemberInput) error {
	if input == nil || input.Member == nil {
		return errors.New("input and member cannot be nil")
	}

	record := *input.Member
	record.Name = ""
	record.Icon = nil

	memberJSON, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	added, err := r.client.HSetNX(ctx, membersKey(record.RoomID), record.UserID, memberJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if !added {
		return ErrAlreadyMember
	}

	if record.Active {
		if err := r.client.SAdd(ctx, activeRoomsKeyPrefix+record.UserID, record.RoomID).Err(); err != nil {
			return fmt.Errorf("failed to index active room: %w", err)
		}
	}

	return nil
}

// GetMember retrieves one membership projection
func (r *redisRepository) GetMember(ctx context.Context, input *GetMemberInput) (*models.RoomMember, error) {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return nil, errors.New("input, room ID and user ID cannot be empty")
	}

	return r.getMember(ctx, r.client, input.RoomID, input.UserID)
}

func (r *redisRepository) getMember(ctx context.Context, c redis.Cmdable, roomID, userID string) (*models.RoomMember, error) {
	memberJSON, err := c.HGet(ctx, membersKey(roomID), userID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	var member models.RoomMember
	if err := json.Unmarshal([]byte(memberJSON), &member); err != nil {
		return nil, fmt.Errorf("failed to unmarshal member: %w", err)
	}

	return &member, nil
}

// GetMembers retrieves all membership projections for a room
func (r *redisRepository) GetMembers(ctx context.Context, input *GetMembersInput) ([]*models.RoomMember, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	entries, err := r.client.HGetAll(ctx, membersKey(input.RoomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	members := make([]*models.RoomMember, 0, len(entries))
	for userID, memberJSON := range entries {
		var member models.RoomMember
		if err := json.Unmarshal([]byte(memberJSON), &member); err != nil {
			return nil, fmt.Errorf("failed to unmarshal member %s: %w", userID, err)
		}
		members = append(members, &member)
	}

	return members, nil
}

// updateMember applies fn to one membership projection inside a WATCH
// transaction on the room's member hash
func (r *redisRepository) updateMember(ctx context.Context, roomID, userID string, fn func(*models.RoomMember)) (*models.RoomMember, error) {
	key := membersKey(roomID)
	var updated *models.RoomMember

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		member, err := r.getMember(ctx, tx, roomID, userID)
		if err != nil {
			return err
		}

		fn(member)

		memberJSON, err := json.Marshal(member)
		if err != nil {
			return fmt.Errorf("failed to marshal member: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, userID, memberJSON)
			if member.Active {
				pipe.SAdd(ctx, activeRoomsKeyPrefix+userID, roomID)
			} else {
				pipe.SRem(ctx, activeRoomsKeyPrefix+userID, roomID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		updated = member
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetMemberActive flips the active flag and sub-state of a member
func (r *redisRepository) SetMemberActive(ctx context.Context, input *SetMemberActiveInput) error {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return errors.New("input, room ID and user ID cannot be empty")
	}

	_, err := r.updateMember(ctx, input.RoomID, input.UserID, func(m *models.RoomMember) {
		m.Active = input.Active
		m.State = input.State
	})
	return err
}

// SetMemberState updates a member's sub-state and score
func (r *redisRepository) SetMemberState(ctx context.Context, input *SetMemberStateInput) (*models.RoomMember, error) {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return nil, errors.New("input, room ID and user ID cannot be empty")
	}

	return r.updateMember(ctx, input.RoomID, input.UserID, func(m *models.RoomMember) {
		m.State = input.State
		m.Score += input.ScoreDelta
	})
}

// SetAllMemberStates resets every member of a room to one sub-state
func (r *redisRepository) SetAllMemberStates(ctx context.Context, input *SetAllMemberStatesInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	key := membersKey(input.RoomID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		entries, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get members: %w", err)
		}

		updates := make(map[string]interface{}, len(entries))
		for userID, memberJSON := range entries {
			var member models.RoomMember
			if err := json.Unmarshal([]byte(memberJSON), &member); err != nil {
				return fmt.Errorf("failed to unmarshal member %s: %w", userID, err)
			}
			member.State = input.State

			out, err := json.Marshal(&member)
			if err != nil {
				return fmt.Errorf("failed to marshal member: %w", err)
			}
			updates[userID] = out
		}

		if len(updates) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, updates)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// RemoveMember deletes a membership projection
func (r *redisRepository) RemoveMember(ctx context.Context, input *RemoveMemberInput) error {
	if input == nil || input.RoomID == "" || input.UserID == "" {
		return errors.New("input, room ID and user ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.HDel(ctx, membersKey(input.RoomID), input.UserID)
	pipe.SRem(ctx, activeRoomsKeyPrefix+input.UserID, input.RoomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// GetActiveRoomIDs lists the rooms a user is currently marked active in
func (r *redisRepository) GetActiveRoomIDs(ctx context.Context, input *GetActiveRoomIDsInput) ([]string, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.New("input and user ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, activeRoomsKeyPrefix+input.UserID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	return ids, nil
}

// PlaceKickVote records a kick vote and returns the updated voter set
func (r *redisRepository) PlaceKickVote(ctx context.Context, input *PlaceKickVoteInput) ([]string, error) {
	if input == nil || input.RoomID == "" || input.VoterID == "" || input.TargetID == "" {
		return nil, errors.New("input, room ID, voter ID and target ID cannot be empty")
	}

	voteKey := kickVotesKeyPrefix + input.RoomID + ":" + input.TargetID

	added, err := r.client.SAdd(ctx, voteKey, input.VoterID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to place kick vote: %w", err)
	}
	if added == 0 {
		return nil, ErrAlreadyVoted
	}

	if err := r.client.SAdd(ctx, kickTargetsKeyPrefix+input.RoomID, input.TargetID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index kick target: %w", err)
	}

	voters, err := r.client.SMembers(ctx, voteKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get kick votes: %w", err)
	}

	return voters, nil
}

// GetKickVotes retrieves all outstanding kick votes for a room
func (r *redisRepository) GetKickVotes(ctx context.Context, input *GetKickVotesInput) (map[string][]string, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	targets, err := r.client.SMembers(ctx, kickTargetsKeyPrefix+input.RoomID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get kick targets: %w", err)
	}

	votes := make(map[string][]string, len(targets))
	for _, target := range targets {
		voters, err := r.client.SMembers(ctx, kickVotesKeyPrefix+input.RoomID+":"+target).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get kick votes for %s: %w", target, err)
		}
		if len(voters) > 0 {
			votes[target] = voters
		}
	}

	return votes, nil
}

// ClearKickVotes removes all kick votes against a target
func (r *redisRepository) ClearKickVotes(ctx context.Context, input *ClearKickVotesInput) error {
	if input == nil || input.RoomID == "" || input.TargetID == "" {
		return errors.New("input, room ID and target ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, kickVotesKeyPrefix+input.RoomID+":"+input.TargetID)
	pipe.SRem(ctx, kickTargetsKeyPrefix+input.RoomID, input.TargetID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear kick votes: %w", err)
	}

	return nil
}
