package identity

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/guesswho-game/guesswho/internal/services/identity Service

import (
	"context"
)

// Service is the interface for account issuance and token validation
type Service interface {
	// CreateUser issues a new participant ID and opaque token
	CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error)

	// Validate checks an ID + token pair and returns the user
	Validate(ctx context.Context, input *ValidateInput) (*ValidateOutput, error)

	// SetupProfile sets or updates a user's display name and icon
	SetupProfile(ctx context.Context, input *SetupProfileInput) (*SetupProfileOutput, error)

	// RandomIcons returns a random batch of icon names from the catalog
	RandomIcons(ctx context.Context, input *RandomIconsInput) (*RandomIconsOutput, error)
}
