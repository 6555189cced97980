package identity

// IdentityError is a custom error type for identity-related errors
type IdentityError string

// Error implements the error interface
func (e IdentityError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrMissingCredentials IdentityError = "missing credentials"
	ErrInvalidToken       IdentityError = "invalid token"
	ErrInvalidName        IdentityError = "invalid name"
	ErrNameTooShort       IdentityError = "name is too short"
	ErrNameTooLong        IdentityError = "name is too long"
	ErrNameHasSpaces      IdentityError = "name cannot contain spaces"
	ErrInvalidIcon        IdentityError = "invalid icon"
	ErrNilConfig          IdentityError = "config cannot be nil"
	ErrNilUserRepo        IdentityError = "user repository cannot be nil"
	ErrNilUUIDGenerator   IdentityError = "UUID generator cannot be nil"
	ErrNilTokenGenerator  IdentityError = "token generator cannot be nil"
	ErrNilShuffler        IdentityError = "shuffler cannot be nil"
)
