package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	"github.com/guesswho-game/guesswho/internal/services/chat"
	"github.com/guesswho-game/guesswho/internal/services/game"
	"github.com/guesswho-game/guesswho/internal/services/identity"
	"github.com/guesswho-game/guesswho/internal/services/room"
)

// Config holds configuration for the websocket handler
type Config struct {
	// Service dependencies
	Identity identity.Service
	Rooms    room.Service
	Game     game.Service
	Chat     chat.Service

	// Hub tracks local connection group membership
	Hub *broadcast.Hub

	// Broadcaster fans events out, across processes when a backplane
	// is configured
	Broadcaster broadcast.Broadcaster

	// Logger for connection lifecycle and delivery problems
	Logger *slog.Logger
}

// envelope is the wire form of an inbound command
type envelope struct {
	// Seq correlates the command with its acknowledgment
	Seq int64 `json:"seq"`

	// Action is the command name
	Action string `json:"action"`

	// Data is the command payload, decoded per command schema
	Data json.RawMessage `json:"data"`
}

// ackError is the structured failure carried in an acknowledgment
type ackError struct {
	// Kind is the error taxonomy bucket
	Kind string `json:"kind"`

	// Message is a human-readable description
	Message string `json:"message"`
}

// ack is the wire form of a command acknowledgment. Exactly one ack is
// sent per command; Data and Error are mutually exclusive.
type ack struct {
	Seq   int64       `json:"seq"`
	Data  interface{} `json:"data,omitempty"`
	Error *ackError   `json:"error,omitempty"`
}

// Inbound payload schemas, one per command. Unknown fields are
// rejected before dispatch.

type createRoomPayload struct {
	Name         string `json:"name"`
	Visibility   string `json:"visibility"`
	VotingMethod string `json:"votingMethod"`
}

type joinRoomPayload struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type emptyPayload struct{}

type submitQuestionPayload struct {
	ID string `json:"id"`
}

type suggestQuestionPayload struct {
	Question string `json:"question"`
}

type submitAnswerPayload struct {
	Answer string `json:"answer"`
}

type positionPayload struct {
	DisplayPosition int `json:"displayPosition"`
}

type makeGuessPayload struct {
	DisplayPosition int    `json:"displayPosition"`
	GuessedUserID   string `json:"guessedUserId"`
}

type sendMessagePayload struct {
	Body string `json:"body"`
}

type editMessagePayload struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

type messageIDPayload struct {
	ID int64 `json:"id"`
}

type voteKickPayload struct {
	TargetID string `json:"targetId"`
}
