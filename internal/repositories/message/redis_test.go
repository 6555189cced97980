package message

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/guesswho-game/guesswho/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
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

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) createTestMessage(roomID, userID, body string, msgType models.MessageType) *models.Message {
	msg, err := s.repo.CreateMessage(context.Background(), &CreateMessageInput{
		Message: &models.Message{
			RoomID:    roomID,
			UserID:    userID,
			Body:      body,
			Type:      msgType,
			CreatedAt: s.testNow,
		},
	})
	s.Require().NoError(err)
	return msg
}

func (s *RedisRepositoryTestSuite) TestCreateMessageAssignsSequentialIDs() {
	first := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)
	second := s.createTestMessage("test-room-id", "user-1", "again", models.MessageTypeChained)

	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)

	// Sequences are per room
	other := s.createTestMessage("other-room", "user-1", "hi", models.MessageTypeNormal)
	s.Equal(int64(1), other.ID)
}

func (s *RedisRepositoryTestSuite) TestGetMessage() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)

	msg, err := s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().NoError(err)
	s.Equal("hello", msg.Body)
	s.Equal("user-1", msg.UserID)
	s.Equal(models.MessageTypeNormal, msg.Type)

	_, err = s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: 999,
	})
	s.Require().ErrorIs(err, ErrMessageNotFound)
}

func (s *RedisRepositoryTestSuite) TestGetLatestMessage() {
	latest, err := s.repo.GetLatestMessage(context.Background(), &GetLatestMessageInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Nil(latest)

	s.createTestMessage("test-room-id", "user-1", "first", models.MessageTypeNormal)
	s.createTestMessage("test-room-id", "user-2", "second", models.MessageTypeNormal)

	latest, err = s.repo.GetLatestMessage(context.Background(), &GetLatestMessageInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal("second", latest.Body)
}

func (s *RedisRepositoryTestSuite) TestGetRecentMessagesNewestFirst() {
	s.createTestMessage("test-room-id", "user-1", "first", models.MessageTypeNormal)
	s.createTestMessage("test-room-id", "user-1", "second", models.MessageTypeChained)
	s.createTestMessage("test-room-id", "user-2", "third", models.MessageTypeNormal)

	messages, err := s.repo.GetRecentMessages(context.Background(), &GetRecentMessagesInput{
		RoomID: "test-room-id",
		Limit:  2,
	})
	s.Require().NoError(err)
	s.Require().Len(messages, 2)
	s.Equal("third", messages[0].Body)
	s.Equal("second", messages[1].Body)
}

func (s *RedisRepositoryTestSuite) TestGetNextMessage() {
	first := s.createTestMessage("test-room-id", "user-1", "first", models.MessageTypeNormal)
	s.createTestMessage("test-room-id", "user-1", "second", models.MessageTypeChained)

	next, err := s.repo.GetNextMessage(context.Background(), &GetNextMessageInput{
		RoomID:  "test-room-id",
		AfterID: first.ID,
	})
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal("second", next.Body)

	// Nothing after the last message
	next, err = s.repo.GetNextMessage(context.Background(), &GetNextMessageInput{
		RoomID:  "test-room-id",
		AfterID: next.ID,
	})
	s.Require().NoError(err)
	s.Nil(next)
}

func (s *RedisRepositoryTestSuite) TestUpdateMessageBody() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)

	err := s.repo.UpdateMessageBody(context.Background(), &UpdateMessageBodyInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		Body:      "edited",
	})
	s.Require().NoError(err)

	msg, err := s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().NoError(err)
	s.Equal("edited", msg.Body)
}

func (s *RedisRepositoryTestSuite) TestSetMessageType() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeChained)

	err := s.repo.SetMessageType(context.Background(), &SetMessageTypeInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		Type:      models.MessageTypeNormal,
	})
	s.Require().NoError(err)

	msg, err := s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.MessageTypeNormal, msg.Type)
}

func (s *RedisRepositoryTestSuite) TestLikeMessage() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)

	like, err := s.repo.LikeMessage(context.Background(), &LikeMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		UserID:    "user-2",
		Now:       s.testNow,
	})
	s.Require().NoError(err)
	s.Equal("user-2", like.UserID)
	s.Equal(s.testNow, like.Since)

	_, err = s.repo.LikeMessage(context.Background(), &LikeMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		UserID:    "user-2",
		Now:       s.testNow,
	})
	s.Require().ErrorIs(err, ErrAlreadyLiked)

	msg, err := s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().NoError(err)
	s.Len(msg.Likes, 1)
}

func (s *RedisRepositoryTestSuite) TestUnlikeMessage() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)

	// Unliking without a like is a no-op
	removed, err := s.repo.UnlikeMessage(context.Background(), &UnlikeMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		UserID:    "user-2",
	})
	s.Require().NoError(err)
	s.False(removed)

	_, err = s.repo.LikeMessage(context.Background(), &LikeMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		UserID:    "user-2",
		Now:       s.testNow,
	})
	s.Require().NoError(err)

	removed, err = s.repo.UnlikeMessage(context.Background(), &UnlikeMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
		UserID:    "user-2",
	})
	s.Require().NoError(err)
	s.True(removed)
}

func (s *RedisRepositoryTestSuite) TestDeleteMessage() {
	created := s.createTestMessage("test-room-id", "user-1", "hello", models.MessageTypeNormal)
	s.createTestMessage("test-room-id", "user-1", "second", models.MessageTypeChained)

	err := s.repo.DeleteMessage(context.Background(), &DeleteMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().NoError(err)

	_, err = s.repo.GetMessage(context.Background(), &GetMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().ErrorIs(err, ErrMessageNotFound)

	// The index entry is gone as well
	messages, err := s.repo.GetRecentMessages(context.Background(), &GetRecentMessagesInput{
		RoomID: "test-room-id",
		Limit:  10,
	})
	s.Require().NoError(err)
	s.Require().Len(messages, 1)
	s.Equal("second", messages[0].Body)

	err = s.repo.DeleteMessage(context.Background(), &DeleteMessageInput{
		RoomID:    "test-room-id",
		MessageID: created.ID,
	})
	s.Require().ErrorIs(err, ErrMessageNotFound)
}
