package models

import (
	"time"
)

// Message length bounds, enforced on user-entered bodies
const (
	MessageMinLength = 1
	MessageMaxLength = 200
)

// MessageType represents how a chat message is rendered
type MessageType string

const (
	// MessageTypeNormal is a regular chat message with an author header
	MessageTypeNormal MessageType = "normal"

	// MessageTypeSystem is a generated status message. System messages
	// are never chained.
	MessageTypeSystem MessageType = "system"

	// MessageTypeChained is a message rendered without a repeated author
	// header because the immediately preceding message in the room has
	// the same author and is not system
	MessageTypeChained MessageType = "chained"
)

// Like records one member liking a message
type Like struct {
	// UserID is the member who liked the message
	UserID string `json:"userId"`

	// Since is when the like was placed
	Since time.Time `json:"since"`
}

// Message is a chat message within a room
type Message struct {
	// ID is the message's room-scoped sequence number. IDs increase in
	// creation order, which the chaining logic relies on.
	ID int64 `json:"id"`

	// RoomID is the room the message was sent in
	RoomID string `json:"roomId,omitempty"`

	// UserID is the author
	UserID string `json:"userId"`

	// Body is the message text
	Body string `json:"body"`

	// Type is normal, system or chained
	Type MessageType `json:"type"`

	// CreatedAt is when the message was created
	CreatedAt time.Time `json:"createdAt"`

	// Likes maps liker user ID to the like record
	Likes map[string]Like `json:"likes,omitempty"`
}
