package user

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/guesswho-game/guesswho/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) saveTestUser(id, name string) {
	user := &models.User{
		ID:    id,
		Token: "token-" + id,
		Name:  name,
	}
	if name != "" {
		user.Icon = &models.Icon{Name: "badger"}
	}
	err := s.repo.SaveUser(context.Background(), &SaveUserInput{User: user})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetUser() {
	s.saveTestUser("user-1", "alice")

	user, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "user-1"})
	s.Require().NoError(err)
	s.Equal("user-1", user.ID)
	s.Equal("token-user-1", user.Token)
	s.Equal("alice", user.Name)
	s.True(user.Configured())
}

func (s *RedisRepositoryTestSuite) TestGetUserNotFound() {
	_, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "missing"})
	s.Require().ErrorIs(err, ErrUserNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveUserOverwrites() {
	s.saveTestUser("user-1", "")

	user, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: "user-1"})
	s.Require().NoError(err)
	s.False(user.Configured())

	user.Name = "alice"
	user.Icon = &models.Icon{Name: "sloth"}
	err = s.repo.SaveUser(context.Background(), &SaveUserInput{User: user})
	s.Require().NoError(err)

	user, err = s.repo.GetUser(context.Background(), &GetUserInput{UserID: "user-1"})
	s.Require().NoError(err)
	s.True(user.Configured())
	s.Equal("sloth", user.Icon.Name)
}

func (s *RedisRepositoryTestSuite) TestGetUsersSkipsMissing() {
	s.saveTestUser("user-1", "alice")
	s.saveTestUser("user-3", "carol")

	users, err := s.repo.GetUsers(context.Background(), &GetUsersInput{
		UserIDs: []string{"user-1", "user-2", "user-3"},
	})
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("user-1", users[0].ID)
	s.Equal("user-3", users[1].ID)
}

func (s *RedisRepositoryTestSuite) TestGetUsersEmptyInput() {
	users, err := s.repo.GetUsers(context.Background(), &GetUsersInput{})
	s.Require().NoError(err)
	s.Empty(users)
}
