package identity

import (
	"context"
	"html"
	"strings"

	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/token"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// service implements the Service interface
type service struct {
	tokenLength    int
	userRepo       userRepo.Repository
	uuidGenerator  uuid.UUID
	tokenGenerator token.Generator
	shuffler       shuffle.Shuffler
}

// New creates a new identity service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.UserRepo == nil {
		return nil, ErrNilUserRepo
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}
	if cfg.TokenGenerator == nil {
		return nil, ErrNilTokenGenerator
	}
	if cfg.Shuffler == nil {
		return nil, ErrNilShuffler
	}

	tokenLength := cfg.TokenLength
	if tokenLength <= 0 {
		tokenLength = token.DefaultLength
	}

	return &service{
		tokenLength:    tokenLength,
		userRepo:       cfg.UserRepo,
		uuidGenerator:  cfg.UUIDGenerator,
		tokenGenerator: cfg.TokenGenerator,
		shuffler:       cfg.Shuffler,
	}, nil
}

// CreateUser issues a new participant ID and opaque token
func (s *service) CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	user := &models.User{
		ID:    s.uuidGenerator.NewUUID(),
		Token: s.tokenGenerator.NewToken(s.tokenLength),
	}

	if err := s.userRepo.SaveUser(ctx, &userRepo.SaveUserInput{User: user}); err != nil {
		return nil, err
	}

	return &CreateUserOutput{User: user}, nil
}

// Validate checks an ID + token pair and returns the user
func (s *service) Validate(ctx context.Context, input *ValidateInput) (*ValidateOutput, error) {
	if input == nil || input.UserID == "" || len(input.Token) != s.tokenLength {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	if user.Token != input.Token {
		return nil, ErrInvalidToken
	}

	return &ValidateOutput{User: user}, nil
}

// SetupProfile sets or updates a user's display name and icon
func (s *service) SetupProfile(ctx context.Context, input *SetupProfileInput) (*SetupProfileOutput, error) {
	if input == nil {
		return nil, ErrMissingCredentials
	}

	validated, err := s.Validate(ctx, &ValidateInput{UserID: input.UserID, Token: input.Token})
	if err != nil {
		return nil, err
	}
	user := validated.User

	name := html.EscapeString(strings.TrimSpace(input.Name))
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(name) < MinNameLength {
		return nil, ErrNameTooShort
	}
	if len(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if strings.Contains(name, " ") {
		return nil, ErrNameHasSpaces
	}

	if err := validateIcon(input.Icon); err != nil {
		return nil, err
	}

	out := &SetupProfileOutput{
		PreviousName: user.Name,
		HadName:      user.Name != "",
		HadIcon:      user.Icon != nil,
	}

	user.Name = name
	user.Icon = input.Icon

	if err := s.userRepo.SaveUser(ctx, &userRepo.SaveUserInput{User: user}); err != nil {
		return nil, err
	}

	out.User = user
	return out, nil
}

func validateIcon(icon *models.Icon) error {
	if icon == nil || icon.Color == "" || icon.BackgroundColor == "" {
		return ErrInvalidIcon
	}
	for _, name := range Icons {
		if icon.Name == name {
			return nil
		}
	}
	return ErrInvalidIcon
}

// RandomIcons returns a random batch of distinct icon names
func (s *service) RandomIcons(ctx context.Context, input *RandomIconsInput) (*RandomIconsOutput, error) {
	count := 0
	if input != nil {
		count = input.Count
	}
	if count <= 0 || count > len(Icons) {
		count = len(Icons)
	}

	perm := s.shuffler.Perm(len(Icons))
	icons := make([]string, 0, count)
	for _, i := range perm[:count] {
		icons = append(icons, Icons[i])
	}

	return &RandomIconsOutput{Icons: icons}, nil
}
