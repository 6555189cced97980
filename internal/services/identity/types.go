package identity

import (
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/token"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// Display name bounds
const (
	MinNameLength = 3
	MaxNameLength = 16
)

// Icons is the catalog of profile icon names clients may pick from
var Icons = []string{
	"apple-alt", "candy-cane", "carrot", "cat", "cheese", "cookie", "crow", "dog", "dove", "dragon", "egg", "fish",
	"frog", "hamburger", "hippo", "horse", "hotdog", "ice-cream", "kiwi-bird", "leaf", "lemon", "otter", "paw",
	"pepper-hot", "pizza-slice", "spider", "holly-berry", "bat", "deer", "duck", "elephant", "monkey", "narwhal",
	"pig", "rabbit", "sheep", "squirrel", "turtle", "whale", "salad", "pumpkin", "wheat", "burrito", "cheese-swiss",
	"croissant", "drumstick", "egg-fried", "french-fries", "gingerbread-man", "hat-chef", "meat", "pie", "popcorn",
	"sausage", "steak", "taco", "turkey",
}

// Config holds configuration for the identity service
type Config struct {
	// TokenLength is the length of issued opaque tokens
	TokenLength int

	// Repository dependencies
	UserRepo userRepo.Repository

	// Service dependencies
	UUIDGenerator  uuid.UUID
	TokenGenerator token.Generator
	Shuffler       shuffle.Shuffler
}

// CreateUserInput contains parameters for issuing an account
type CreateUserInput struct{}

// CreateUserOutput contains the issued account
type CreateUserOutput struct {
	// User carries the new ID and token
	User *models.User
}

// ValidateInput contains the credentials to check
type ValidateInput struct {
	// UserID is the claimed identity
	UserID string

	// Token is the opaque credential
	Token string
}

// ValidateOutput contains the validated user
type ValidateOutput struct {
	// User is the user record, token included
	User *models.User
}

// SetupProfileInput contains parameters for profile setup
type SetupProfileInput struct {
	// UserID is the claimed identity
	UserID string

	// Token is the opaque credential
	Token string

	// Name is the requested display name
	Name string

	// Icon is the requested profile icon
	Icon *models.Icon
}

// SetupProfileOutput contains the result of profile setup
type SetupProfileOutput struct {
	// User is the updated user record
	User *models.User

	// PreviousName is the display name before the update, if any
	PreviousName string

	// HadName indicates the user already had a display name
	HadName bool

	// HadIcon indicates the user already had an icon
	HadIcon bool
}

// RandomIconsInput contains parameters for an icon batch
type RandomIconsInput struct {
	// Count is the number of icon names to return
	Count int
}

// RandomIconsOutput contains the random icon batch
type RandomIconsOutput struct {
	// Icons are distinct icon names from the catalog
	Icons []string
}
