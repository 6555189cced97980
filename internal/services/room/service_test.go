package room

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/guesswho-game/guesswho/internal/common/clock/mocks"
	shuffleMocks "github.com/guesswho-game/guesswho/internal/common/shuffle/mocks"
	tokenMocks "github.com/guesswho-game/guesswho/internal/common/token/mocks"
	uuidMocks "github.com/guesswho-game/guesswho/internal/common/uuid/mocks"
	"github.com/guesswho-game/guesswho/internal/models"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
	"github.com/guesswho-game/guesswho/internal/services/chat"
)

type RoomServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockClock    *clockMocks.MockClock
	mockUUID     *uuidMocks.MockUUID
	mockToken    *tokenMocks.MockGenerator
	mockShuffler *shuffleMocks.MockShuffler

	mr           *miniredis.Miniredis
	client       *redis.Client
	roomRepo     roomRepo.Repository
	userRepo     userRepo.Repository
	questionRepo questionRepo.Repository
	answerRepo   answerRepo.Repository
	messageRepo  messageRepo.Repository

	roomService Service
	ctx         context.Context

	testTime time.Time
}

func (s *RoomServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.mockToken = tokenMocks.NewMockGenerator(s.mockCtrl)
	s.mockShuffler = shuffleMocks.NewMockShuffler(s.mockCtrl)

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.roomRepo, err = roomRepo.NewRedis(&roomRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.userRepo, err = userRepo.NewRedis(&userRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.questionRepo, err = questionRepo.NewRedis(&questionRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.answerRepo, err = answerRepo.NewRedis(&answerRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.messageRepo, err = messageRepo.NewRedis(&messageRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	chatService, err := chat.New(&chat.Config{
		MessageRepo: s.messageRepo,
		UserRepo:    s.userRepo,
		Clock:       s.mockClock,
	})
	s.Require().NoError(err)

	svc, err := New(&Config{
		RoomRepo:       s.roomRepo,
		UserRepo:       s.userRepo,
		QuestionRepo:   s.questionRepo,
		AnswerRepo:     s.answerRepo,
		MessageRepo:    s.messageRepo,
		Chat:           chatService,
		Clock:          s.mockClock,
		UUIDGenerator:  s.mockUUID,
		TokenGenerator: s.mockToken,
		Shuffler:       s.mockShuffler,
	})
	s.Require().NoError(err)
	s.roomService = svc

	s.ctx = context.Background()
	s.testTime = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	s.saveUser("user-1", "alice")
	s.saveUser("user-2", "bob")
	s.saveUser("user-3", "carol")
	s.saveUser("user-4", "")
	s.addQuestions(20)
}

func (s *RoomServiceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
	s.mockCtrl.Finish()
}

func TestRoomServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoomServiceTestSuite))
}

func (s *RoomServiceTestSuite) saveUser(id, name string) {
	user := &models.User{ID: id, Token: "token-" + id, Name: name}
	if name != "" {
		user.Icon = &models.Icon{Name: "otter", Color: "#222222", BackgroundColor: "#eeeeee"}
	}
	err := s.userRepo.SaveUser(s.ctx, &userRepo.SaveUserInput{User: user})
	s.Require().NoError(err)
}

func (s *RoomServiceTestSuite) addQuestions(count int) {
	for i := 0; i < count; i++ {
		err := s.questionRepo.AddQuestion(s.ctx, &questionRepo.AddQuestionInput{
			Question: &models.Question{
				ID:   fmt.Sprintf("question-%d", i),
				Text: fmt.Sprintf("What is thing %d?", i),
			},
		})
		s.Require().NoError(err)
	}
}

func (s *RoomServiceTestSuite) createTestRoom(visibility models.RoomVisibility) *CreateRoomOutput {
	s.mockUUID.EXPECT().NewUUID().Return("test-room-id")
	if visibility == models.RoomVisibilityPrivate {
		s.mockToken.EXPECT().NewToken(8).Return("roomtokn")
	}

	out, err := s.roomService.CreateRoom(s.ctx, &CreateRoomInput{
		UserID:       "user-1",
		Name:         "Friday Night",
		Visibility:   visibility,
		VotingMethod: models.VotingMethodWinner,
	})
	s.Require().NoError(err)
	return out
}

func (s *RoomServiceTestSuite) joinRoom(userID, token string) *JoinRoomOutput {
	out, err := s.roomService.JoinRoom(s.ctx, &JoinRoomInput{
		RoomID: "test-room-id",
		UserID: userID,
		Token:  token,
	})
	s.Require().NoError(err)
	return out
}

func (s *RoomServiceTestSuite) TestCreateRoom() {
	out := s.createTestRoom(models.RoomVisibilityPublic)

	s.Equal("test-room-id", out.Room.ID)
	s.Equal("Friday Night", out.Room.Name)
	s.Equal(models.RoomStatePickingQuestion, out.Room.State)
	s.Empty(out.Room.Token)

	// The creator starts as the question selector with an offer
	s.Equal("user-1", out.Member.UserID)
	s.True(out.Member.Active)
	s.Equal(models.MemberStateSelectingQuestion, out.Member.State)
	s.Equal("alice", out.Member.Name)
	s.Len(out.Questions, 3)

	s.Require().NotNil(out.Message)
	s.Equal("Created the room", out.Message.Body)
	s.Equal(models.MessageTypeSystem, out.Message.Type)
}

func (s *RoomServiceTestSuite) TestCreateRoomPrivateGetsToken() {
	out := s.createTestRoom(models.RoomVisibilityPrivate)
	s.Equal("roomtokn", out.Room.Token)
}

func (s *RoomServiceTestSuite) TestCreateRoomValidation() {
	_, err := s.roomService.CreateRoom(s.ctx, &CreateRoomInput{
		UserID:       "user-1",
		Visibility:   "secret",
		VotingMethod: models.VotingMethodWinner,
	})
	s.Require().ErrorIs(err, ErrInvalidVisibility)

	_, err = s.roomService.CreateRoom(s.ctx, &CreateRoomInput{
		UserID:       "user-1",
		Visibility:   models.RoomVisibilityPublic,
		VotingMethod: "dictatorship",
	})
	s.Require().ErrorIs(err, ErrInvalidVotingMethod)

	long := make([]byte, MaxRoomNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.roomService.CreateRoom(s.ctx, &CreateRoomInput{
		UserID:       "user-1",
		Name:         string(long),
		Visibility:   models.RoomVisibilityPublic,
		VotingMethod: models.VotingMethodWinner,
	})
	s.Require().ErrorIs(err, ErrRoomNameTooLong)
}

func (s *RoomServiceTestSuite) TestListRooms() {
	s.createTestRoom(models.RoomVisibilityPublic)

	out, err := s.roomService.ListRooms(s.ctx, &ListRoomsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Rooms, 1)
	s.Equal("test-room-id", out.Rooms[0].ID)
	s.Equal(1, out.Rooms[0].Players)
	s.Equal(1, out.Rooms[0].ActivePlayers)
	s.Equal(s.testTime, out.Rooms[0].LastActive)
}

func (s *RoomServiceTestSuite) TestListRoomsHidesPrivate() {
	s.createTestRoom(models.RoomVisibilityPrivate)

	out, err := s.roomService.ListRooms(s.ctx, &ListRoomsInput{})
	s.Require().NoError(err)
	s.Empty(out.Rooms)
}

func (s *RoomServiceTestSuite) TestJoinRoomNewMember() {
	s.createTestRoom(models.RoomVisibilityPublic)

	out := s.joinRoom("user-2", "")

	s.False(out.Rejoined)
	s.Equal("user-2", out.Member.UserID)
	s.True(out.Member.Active)
	// The creator already holds the selector role
	s.Equal(models.MemberStateIdle, out.Member.State)
	s.Empty(out.Questions)

	s.Require().NotNil(out.Message)
	s.Equal("Joined the room", out.Message.Body)

	s.Require().NotNil(out.View)
	s.Require().Len(out.View.Members, 2)
	s.Equal("user-1", out.View.Members[0].UserID)
	s.Equal("alice", out.View.Members[0].Name)
	s.Equal("user-2", out.View.Members[1].UserID)
}

func (s *RoomServiceTestSuite) TestJoinRoomPrivateToken() {
	s.createTestRoom(models.RoomVisibilityPrivate)

	_, err := s.roomService.JoinRoom(s.ctx, &JoinRoomInput{
		RoomID: "test-room-id",
		UserID: "user-2",
		Token:  "wrong",
	})
	s.Require().ErrorIs(err, ErrInvalidToken)

	out := s.joinRoom("user-2", "roomtokn")
	s.True(out.Member.Active)
}

func (s *RoomServiceTestSuite) TestJoinRoomRejoinKeepsState() {
	s.createTestRoom(models.RoomVisibilityPublic)

	// The creator reconnects while still holding the selector role
	out := s.joinRoom("user-1", "")

	s.True(out.Rejoined)
	s.Equal(models.MemberStateSelectingQuestion, out.Member.State)
	// Still the selector, so the pending offer comes back
	s.Len(out.Questions, 3)
	// No join message for a member who never left
	s.Nil(out.Message)
}

func (s *RoomServiceTestSuite) TestJoinRoomAfterLeaveAnnouncesReturn() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-2", "")

	// user-2 leaves, then comes back
	_, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID: "test-room-id",
		UserID: "user-2",
	})
	s.Require().NoError(err)

	out := s.joinRoom("user-2", "")
	s.True(out.Rejoined)
	s.Require().NotNil(out.Message)
	s.Equal("Joined the room", out.Message.Body)
}

func (s *RoomServiceTestSuite) TestJoinRoomUnknownRoom() {
	_, err := s.roomService.JoinRoom(s.ctx, &JoinRoomInput{
		RoomID: "missing",
		UserID: "user-1",
	})
	s.Require().ErrorIs(err, roomRepo.ErrRoomNotFound)
}

func (s *RoomServiceTestSuite) TestLeaveRoomReassignsSelector() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-2", "")
	s.joinRoom("user-3", "")

	// Replacement picks eligible[Intn]; eligible is sorted by user ID,
	// here [user-2, user-3]
	s.mockShuffler.EXPECT().Intn(2).Return(1)

	out, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().NoError(err)
	s.True(out.Left)
	s.Require().NotNil(out.Replacement)
	s.Equal("user-3", out.Replacement.UserID)
	s.Equal(models.MemberStateSelectingQuestion, out.Replacement.State)
	s.Equal("carol", out.Replacement.Name)
	s.Len(out.Questions, 3)

	member, err := s.roomRepo.GetMember(s.ctx, &roomRepo.GetMemberInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().NoError(err)
	s.False(member.Active)
	s.Equal(models.MemberStateIdle, member.State)
}

func (s *RoomServiceTestSuite) TestLeaveRoomReassignsAskerMidCollecting() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-2", "")
	s.joinRoom("user-3", "")

	err := s.roomRepo.SetState(s.ctx, &roomRepo.SetStateInput{
		RoomID:   "test-room-id",
		Expected: models.RoomStatePickingQuestion,
		Next:     models.RoomStateCollectingAnswers,
		Now:      s.testTime,
	})
	s.Require().NoError(err)

	_, err = s.roomRepo.SetMemberState(s.ctx, &roomRepo.SetMemberStateInput{
		RoomID: "test-room-id",
		UserID: "user-1",
		State:  models.MemberStateAskingQuestion,
	})
	s.Require().NoError(err)
	for _, id := range []string{"user-2", "user-3"} {
		_, err = s.roomRepo.SetMemberState(s.ctx, &roomRepo.SetMemberStateInput{
			RoomID: "test-room-id",
			UserID: id,
			State:  models.MemberStateAnsweringQuestion,
		})
		s.Require().NoError(err)
	}

	s.mockShuffler.EXPECT().Intn(2).Return(0)

	out, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().NoError(err)
	s.True(out.Left)
	s.Require().NotNil(out.Replacement)
	s.Equal("user-2", out.Replacement.UserID)
	s.Equal(models.MemberStateAskingQuestion, out.Replacement.State)

	// The asker role needs no question offer
	s.Empty(out.Questions)

	// Role reassignment does not reset the round
	room, err := s.roomRepo.GetRoom(s.ctx, &roomRepo.GetRoomInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Equal(models.RoomStateCollectingAnswers, room.State)
}

func (s *RoomServiceTestSuite) TestLeaveRoomSkipsUnconfiguredReplacement() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-4", "")

	// user-4 never set up a profile, so nobody is eligible. The leave
	// still stands.
	out, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().ErrorIs(err, ErrNoEligibleReplacement)
	s.Require().NotNil(out)
	s.True(out.Left)

	member, err := s.roomRepo.GetMember(s.ctx, &roomRepo.GetMemberInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().NoError(err)
	s.False(member.Active)
}

func (s *RoomServiceTestSuite) TestLeaveRoomLoggedOutIsNoOp() {
	s.createTestRoom(models.RoomVisibilityPublic)

	out, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID:    "test-room-id",
		UserID:    "user-1",
		LoggedOut: true,
	})
	s.Require().NoError(err)
	s.False(out.Left)

	member, err := s.roomRepo.GetMember(s.ctx, &roomRepo.GetMemberInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().NoError(err)
	s.True(member.Active)
}

func (s *RoomServiceTestSuite) TestLeaveRoomNotAMember() {
	s.createTestRoom(models.RoomVisibilityPublic)

	_, err := s.roomService.LeaveRoom(s.ctx, &LeaveRoomInput{
		RoomID: "test-room-id",
		UserID: "user-2",
	})
	s.Require().ErrorIs(err, ErrNotRoomMember)
}

func (s *RoomServiceTestSuite) TestPlaceKickVoteMajority() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-2", "")
	s.joinRoom("user-3", "")

	// 1 of 3 active is no majority
	out, err := s.roomService.PlaceKickVote(s.ctx, &PlaceKickVoteInput{
		RoomID:   "test-room-id",
		VoterID:  "user-2",
		TargetID: "user-1",
	})
	s.Require().NoError(err)
	s.False(out.Kicked)
	s.Len(out.Voters, 1)

	// 2 of 3 is a strict majority; user-1 held the selector role, so a
	// replacement among [user-2, user-3] is drawn
	s.mockShuffler.EXPECT().Intn(2).Return(0)

	out, err = s.roomService.PlaceKickVote(s.ctx, &PlaceKickVoteInput{
		RoomID:   "test-room-id",
		VoterID:  "user-3",
		TargetID: "user-1",
	})
	s.Require().NoError(err)
	s.True(out.Kicked)
	s.Len(out.Voters, 2)
	s.Require().NotNil(out.Replacement)
	s.Equal("user-2", out.Replacement.UserID)
	s.Len(out.Questions, 3)

	// The kicked membership is removed, not just deactivated
	_, err = s.roomRepo.GetMember(s.ctx, &roomRepo.GetMemberInput{
		RoomID: "test-room-id",
		UserID: "user-1",
	})
	s.Require().ErrorIs(err, roomRepo.ErrMemberNotFound)

	// The vote slate for the target is cleared
	votes, err := s.roomRepo.GetKickVotes(s.ctx, &roomRepo.GetKickVotesInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Empty(votes)
}

func (s *RoomServiceTestSuite) TestPlaceKickVoteGuards() {
	s.createTestRoom(models.RoomVisibilityPublic)
	s.joinRoom("user-2", "")

	_, err := s.roomService.PlaceKickVote(s.ctx, &PlaceKickVoteInput{
		RoomID:   "test-room-id",
		VoterID:  "user-1",
		TargetID: "user-1",
	})
	s.Require().ErrorIs(err, ErrCannotKickSelf)

	_, err = s.roomService.PlaceKickVote(s.ctx, &PlaceKickVoteInput{
		RoomID:   "test-room-id",
		VoterID:  "user-3",
		TargetID: "user-1",
	})
	s.Require().ErrorIs(err, roomRepo.ErrMemberNotFound)

	_, err = s.roomService.PlaceKickVote(s.ctx, &PlaceKickVoteInput{
		RoomID:   "test-room-id",
		VoterID:  "user-1",
		TargetID: "user-3",
	})
	s.Require().ErrorIs(err, roomRepo.ErrMemberNotFound)
}

func (s *RoomServiceTestSuite) TestGetRoomViewChatWindow() {
	s.createTestRoom(models.RoomVisibilityPublic)

	out, err := s.roomService.GetRoom(s.ctx, &GetRoomInput{
		RoomID:      "test-room-id",
		WithMembers: true,
		WithExtras:  true,
	})
	s.Require().NoError(err)

	view := out.View
	s.Equal("test-room-id", view.Room.ID)
	s.Len(view.Members, 1)
	// Creation message, oldest first
	s.Require().Len(view.Messages, 1)
	s.Equal("Created the room", view.Messages[0].Body)
	// No selected question yet, so no answers section
	s.Nil(view.SelectedQuestion)
	s.Empty(view.Answers)
}

func (s *RoomServiceTestSuite) TestActiveRooms() {
	s.createTestRoom(models.RoomVisibilityPublic)

	out, err := s.roomService.ActiveRooms(s.ctx, &ActiveRoomsInput{UserID: "user-1"})
	s.Require().NoError(err)
	s.Equal([]string{"test-room-id"}, out.RoomIDs)

	out, err = s.roomService.ActiveRooms(s.ctx, &ActiveRoomsInput{UserID: "user-2"})
	s.Require().NoError(err)
	s.Empty(out.RoomIDs)
}
