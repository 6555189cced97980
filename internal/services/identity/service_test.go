package identity

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	shuffleMocks "github.com/guesswho-game/guesswho/internal/common/shuffle/mocks"
	tokenMocks "github.com/guesswho-game/guesswho/internal/common/token/mocks"
	uuidMocks "github.com/guesswho-game/guesswho/internal/common/uuid/mocks"
	"github.com/guesswho-game/guesswho/internal/models"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

type IdentityServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockUUID     *uuidMocks.MockUUID
	mockToken    *tokenMocks.MockGenerator
	mockShuffler *shuffleMocks.MockShuffler

	mr       *miniredis.Miniredis
	client   *redis.Client
	userRepo userRepo.Repository

	identityService Service
	ctx             context.Context

	testIcon *models.Icon
}

func (s *IdentityServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.mockToken = tokenMocks.NewMockGenerator(s.mockCtrl)
	s.mockShuffler = shuffleMocks.NewMockShuffler(s.mockCtrl)

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.userRepo, err = userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	svc, err := New(&Config{
		TokenLength:    8,
		UserRepo:       s.userRepo,
		UUIDGenerator:  s.mockUUID,
		TokenGenerator: s.mockToken,
		Shuffler:       s.mockShuffler,
	})
	s.Require().NoError(err)
	s.identityService = svc

	s.ctx = context.Background()
	s.testIcon = &models.Icon{
		Name:            "otter",
		Color:           "#222222",
		BackgroundColor: "#eeeeee",
	}
}

func (s *IdentityServiceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
	s.mockCtrl.Finish()
}

func TestIdentityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceTestSuite))
}

func (s *IdentityServiceTestSuite) createTestUser() *models.User {
	s.mockUUID.EXPECT().NewUUID().Return("test-user-id")
	s.mockToken.EXPECT().NewToken(8).Return("abcd1234")

	out, err := s.identityService.CreateUser(s.ctx, &CreateUserInput{})
	s.Require().NoError(err)
	return out.User
}

func (s *IdentityServiceTestSuite) TestCreateUser() {
	user := s.createTestUser()

	s.Equal("test-user-id", user.ID)
	s.Equal("abcd1234", user.Token)
	s.False(user.Configured())

	stored, err := s.userRepo.GetUser(s.ctx, &userRepo.GetUserInput{UserID: "test-user-id"})
	s.Require().NoError(err)
	s.Equal("abcd1234", stored.Token)
}

func (s *IdentityServiceTestSuite) TestValidate() {
	s.createTestUser()

	out, err := s.identityService.Validate(s.ctx, &ValidateInput{
		UserID: "test-user-id",
		Token:  "abcd1234",
	})
	s.Require().NoError(err)
	s.Equal("test-user-id", out.User.ID)
}

func (s *IdentityServiceTestSuite) TestValidateRejectsBadCredentials() {
	s.createTestUser()

	// Wrong token of the right length
	_, err := s.identityService.Validate(s.ctx, &ValidateInput{
		UserID: "test-user-id",
		Token:  "zzzz9999",
	})
	s.Require().ErrorIs(err, ErrInvalidToken)

	// Token length mismatch never reaches the store
	_, err = s.identityService.Validate(s.ctx, &ValidateInput{
		UserID: "test-user-id",
		Token:  "short",
	})
	s.Require().ErrorIs(err, ErrMissingCredentials)

	_, err = s.identityService.Validate(s.ctx, &ValidateInput{
		UserID: "",
		Token:  "abcd1234",
	})
	s.Require().ErrorIs(err, ErrMissingCredentials)

	_, err = s.identityService.Validate(s.ctx, &ValidateInput{
		UserID: "unknown-user",
		Token:  "abcd1234",
	})
	s.Require().ErrorIs(err, userRepo.ErrUserNotFound)
}

func (s *IdentityServiceTestSuite) TestSetupProfile() {
	s.createTestUser()

	out, err := s.identityService.SetupProfile(s.ctx, &SetupProfileInput{
		UserID: "test-user-id",
		Token:  "abcd1234",
		Name:   "alice",
		Icon:   s.testIcon,
	})
	s.Require().NoError(err)
	s.Equal("alice", out.User.Name)
	s.False(out.HadName)
	s.False(out.HadIcon)
	s.True(out.User.Configured())

	// A second setup reports the previous profile
	out, err = s.identityService.SetupProfile(s.ctx, &SetupProfileInput{
		UserID: "test-user-id",
		Token:  "abcd1234",
		Name:   "alicia",
		Icon:   s.testIcon,
	})
	s.Require().NoError(err)
	s.True(out.HadName)
	s.True(out.HadIcon)
	s.Equal("alice", out.PreviousName)
}

func (s *IdentityServiceTestSuite) TestSetupProfileValidatesName() {
	s.createTestUser()

	cases := []struct {
		name     string
		expected error
	}{
		{"", ErrInvalidName},
		{"   ", ErrInvalidName},
		{"ab", ErrNameTooShort},
		{"thisnameisfartoolong", ErrNameTooLong},
		{"has space", ErrNameHasSpaces},
	}

	for _, tc := range cases {
		_, err := s.identityService.SetupProfile(s.ctx, &SetupProfileInput{
			UserID: "test-user-id",
			Token:  "abcd1234",
			Name:   tc.name,
			Icon:   s.testIcon,
		})
		s.Require().ErrorIs(err, tc.expected, "name %q", tc.name)
	}
}

func (s *IdentityServiceTestSuite) TestSetupProfileValidatesIcon() {
	s.createTestUser()

	for _, icon := range []*models.Icon{
		nil,
		{Name: "not-in-catalog", Color: "#222222", BackgroundColor: "#eeeeee"},
		{Name: "otter", BackgroundColor: "#eeeeee"},
		{Name: "otter", Color: "#222222"},
	} {
		_, err := s.identityService.SetupProfile(s.ctx, &SetupProfileInput{
			UserID: "test-user-id",
			Token:  "abcd1234",
			Name:   "alice",
			Icon:   icon,
		})
		s.Require().ErrorIs(err, ErrInvalidIcon)
	}
}

func (s *IdentityServiceTestSuite) TestSetupProfileRequiresValidToken() {
	s.createTestUser()

	_, err := s.identityService.SetupProfile(s.ctx, &SetupProfileInput{
		UserID: "test-user-id",
		Token:  "zzzz9999",
		Name:   "alice",
		Icon:   s.testIcon,
	})
	s.Require().ErrorIs(err, ErrInvalidToken)
}

func (s *IdentityServiceTestSuite) TestRandomIcons() {
	perm := make([]int, len(Icons))
	for i := range perm {
		perm[i] = len(Icons) - 1 - i
	}
	s.mockShuffler.EXPECT().Perm(len(Icons)).Return(perm)

	out, err := s.identityService.RandomIcons(s.ctx, &RandomIconsInput{Count: 3})
	s.Require().NoError(err)
	s.Require().Len(out.Icons, 3)
	s.Equal(Icons[len(Icons)-1], out.Icons[0])
	s.Equal(Icons[len(Icons)-2], out.Icons[1])
	s.Equal(Icons[len(Icons)-3], out.Icons[2])
}

func (s *IdentityServiceTestSuite) TestRandomIconsZeroCountReturnsAll() {
	perm := make([]int, len(Icons))
	for i := range perm {
		perm[i] = i
	}
	s.mockShuffler.EXPECT().Perm(len(Icons)).Return(perm)

	out, err := s.identityService.RandomIcons(s.ctx, &RandomIconsInput{})
	s.Require().NoError(err)
	s.Len(out.Icons, len(Icons))
}
