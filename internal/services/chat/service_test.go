package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/guesswho-game/guesswho/internal/common/clock/mocks"
	"github.com/guesswho-game/guesswho/internal/models"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

type ChatServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock

	mr          *miniredis.Miniredis
	client      *redis.Client
	messageRepo messageRepo.Repository
	userRepo    userRepo.Repository

	chatService Service
	ctx         context.Context

	testTime   time.Time
	testRoomID string
}

func (s *ChatServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.messageRepo, err = messageRepo.NewRedis(&messageRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.userRepo, err = userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	svc, err := New(&Config{
		MessageRepo: s.messageRepo,
		UserRepo:    s.userRepo,
		Clock:       s.mockClock,
	})
	s.Require().NoError(err)
	s.chatService = svc

	s.ctx = context.Background()
	s.testTime = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	s.testRoomID = "test-room-id"

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	s.saveUser("user-1", "alice")
	s.saveUser("user-2", "bob")
	s.saveUser("user-3", "")
}

func (s *ChatServiceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
	s.mockCtrl.Finish()
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}

func (s *ChatServiceTestSuite) saveUser(id, name string) {
	user := &models.User{ID: id, Token: "token-" + id, Name: name}
	if name != "" {
		user.Icon = &models.Icon{Name: "badger"}
	}
	err := s.userRepo.SaveUser(s.ctx, &userRepo.SaveUserInput{User: user})
	s.Require().NoError(err)
}

func (s *ChatServiceTestSuite) sendMessage(userID, body string) *models.Message {
	out, err := s.chatService.SendMessage(s.ctx, &SendMessageInput{
		RoomID: s.testRoomID,
		UserID: userID,
		Body:   body,
	})
	s.Require().NoError(err)
	return out.Message
}

func (s *ChatServiceTestSuite) TestSendMessage() {
	msg := s.sendMessage("user-1", "hello everyone")

	s.Equal(int64(1), msg.ID)
	s.Equal("user-1", msg.UserID)
	s.Equal("hello everyone", msg.Body)
	s.Equal(models.MessageTypeNormal, msg.Type)
	s.Equal(s.testTime, msg.CreatedAt)
}

func (s *ChatServiceTestSuite) TestSendMessageEscapesMarkup() {
	msg := s.sendMessage("user-1", "<script>alert(1)</script>")
	s.Equal("&lt;script&gt;alert(1)&lt;/script&gt;", msg.Body)
}

func (s *ChatServiceTestSuite) TestSendMessageRequiresProfile() {
	_, err := s.chatService.SendMessage(s.ctx, &SendMessageInput{
		RoomID: s.testRoomID,
		UserID: "user-3",
		Body:   "hello",
	})
	s.Require().ErrorIs(err, ErrProfileRequired)
}

func (s *ChatServiceTestSuite) TestSendMessageBodyBounds() {
	_, err := s.chatService.SendMessage(s.ctx, &SendMessageInput{
		RoomID: s.testRoomID,
		UserID: "user-1",
		Body:   "",
	})
	s.Require().ErrorIs(err, ErrBodyTooShort)

	long := make([]byte, models.MessageMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.chatService.SendMessage(s.ctx, &SendMessageInput{
		RoomID: s.testRoomID,
		UserID: "user-1",
		Body:   string(long),
	})
	s.Require().ErrorIs(err, ErrBodyTooLong)
}

func (s *ChatServiceTestSuite) TestSendMessageChainsSameAuthor() {
	first := s.sendMessage("user-1", "hello")
	second := s.sendMessage("user-1", "me again")
	third := s.sendMessage("user-2", "hi both")

	s.Equal(models.MessageTypeNormal, first.Type)
	s.Equal(models.MessageTypeChained, second.Type)
	s.Equal(models.MessageTypeNormal, third.Type)
}

func (s *ChatServiceTestSuite) TestSendMessageNeverChainsAcrossSystem() {
	s.sendMessage("user-1", "hello")

	sys, err := s.chatService.SendMessage(s.ctx, &SendMessageInput{
		RoomID: s.testRoomID,
		UserID: "user-1",
		Body:   "Joined the room",
		System: true,
	})
	s.Require().NoError(err)
	s.Equal(models.MessageTypeSystem, sys.Message.Type)

	// Same author again, but the system message broke the run
	after := s.sendMessage("user-1", "back to chatting")
	s.Equal(models.MessageTypeNormal, after.Type)
}

func (s *ChatServiceTestSuite) TestEditMessage() {
	msg := s.sendMessage("user-1", "hello")

	out, err := s.chatService.EditMessage(s.ctx, &EditMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-1",
		MessageID: msg.ID,
		Body:      "hello edited",
	})
	s.Require().NoError(err)
	s.Equal("hello edited", out.Message.Body)

	stored, err := s.messageRepo.GetMessage(s.ctx, &messageRepo.GetMessageInput{
		RoomID:    s.testRoomID,
		MessageID: msg.ID,
	})
	s.Require().NoError(err)
	s.Equal("hello edited", stored.Body)
}

func (s *ChatServiceTestSuite) TestEditMessageAuthorOnly() {
	msg := s.sendMessage("user-1", "hello")

	_, err := s.chatService.EditMessage(s.ctx, &EditMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
		Body:      "hijacked",
	})
	s.Require().ErrorIs(err, ErrNotMessageAuthor)
}

func (s *ChatServiceTestSuite) TestLikeAndUnlikeMessage() {
	msg := s.sendMessage("user-1", "hello")

	liked, err := s.chatService.LikeMessage(s.ctx, &LikeMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
	})
	s.Require().NoError(err)
	s.Equal("user-2", liked.Like.UserID)
	s.Equal(s.testTime, liked.Like.Since)

	_, err = s.chatService.LikeMessage(s.ctx, &LikeMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
	})
	s.Require().ErrorIs(err, messageRepo.ErrAlreadyLiked)

	unliked, err := s.chatService.UnlikeMessage(s.ctx, &UnlikeMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
	})
	s.Require().NoError(err)
	s.True(unliked.Removed)

	unliked, err = s.chatService.UnlikeMessage(s.ctx, &UnlikeMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
	})
	s.Require().NoError(err)
	s.False(unliked.Removed)
}

func (s *ChatServiceTestSuite) TestDeleteMessageUnchainsSuccessor() {
	first := s.sendMessage("user-1", "hello")
	second := s.sendMessage("user-1", "me again")
	s.Equal(models.MessageTypeChained, second.Type)

	out, err := s.chatService.DeleteMessage(s.ctx, &DeleteMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-1",
		MessageID: first.ID,
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.UnchainedMessageID)
	s.Equal(second.ID, *out.UnchainedMessageID)

	stored, err := s.messageRepo.GetMessage(s.ctx, &messageRepo.GetMessageInput{
		RoomID:    s.testRoomID,
		MessageID: second.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.MessageTypeNormal, stored.Type)
}

func (s *ChatServiceTestSuite) TestDeleteMessageNoUnchainForOtherAuthor() {
	first := s.sendMessage("user-1", "hello")
	s.sendMessage("user-2", "hi")

	out, err := s.chatService.DeleteMessage(s.ctx, &DeleteMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-1",
		MessageID: first.ID,
	})
	s.Require().NoError(err)
	s.Nil(out.UnchainedMessageID)
}

func (s *ChatServiceTestSuite) TestDeleteMessageAuthorOnly() {
	msg := s.sendMessage("user-1", "hello")

	_, err := s.chatService.DeleteMessage(s.ctx, &DeleteMessageInput{
		RoomID:    s.testRoomID,
		UserID:    "user-2",
		MessageID: msg.ID,
	})
	s.Require().ErrorIs(err, ErrNotMessageAuthor)
}
