package user

import (
	"github.com/guesswho-game/guesswho/internal/models"
)

// SaveUserInput contains parameters for persisting a user
type SaveUserInput struct {
	// User is the user to save
	User *models.User
}

// GetUserInput contains parameters for retrieving a user
type GetUserInput struct {
	// UserID is the unique identifier of the user
	UserID string
}

// GetUsersInput contains parameters for retrieving several users
type GetUsersInput struct {
	// UserIDs are the identifiers to look up
	UserIDs []string
}
