package user

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/guesswho-game/guesswho/internal/repositories/user Repository

import (
	"context"

	"github.com/guesswho-game/guesswho/internal/models"
)

// Repository defines the interface for user data persistence
type Repository interface {
	// SaveUser persists a user, token included
	SaveUser(ctx context.Context, input *SaveUserInput) error

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, input *GetUserInput) (*models.User, error)

	// GetUsers retrieves several users at once, skipping unknown IDs
	GetUsers(ctx context.Context, input *GetUsersInput) ([]*models.User, error)
}
