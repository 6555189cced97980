package room

import (
	"context"
	"errors"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/token"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
	"github.com/guesswho-game/guesswho/internal/services/chat"
)

// service implements the Service interface
type service struct {
	roomRepo     roomRepo.Repository
	userRepo     userRepo.Repository
	questionRepo questionRepo.Repository
	answerRepo   answerRepo.Repository
	messageRepo  messageRepo.Repository
	chat         chat.Service
	clock        clock.Clock
	uuid         uuid.UUID
	token        token.Generator
	shuffler     shuffle.Shuffler

	listWindow    time.Duration
	listLimit     int
	optionCount   int
	tokenLength   int
	messageWindow int
}

// New creates a new room service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RoomRepo == nil {
		return nil, ErrNilRoomRepo
	}
	if cfg.UserRepo == nil {
		return nil, ErrNilUserRepo
	}
	if cfg.QuestionRepo == nil {
		return nil, ErrNilQuestionRepo
	}
	if cfg.AnswerRepo == nil {
		return nil, ErrNilAnswerRepo
	}
	if cfg.MessageRepo == nil {
		return nil, ErrNilMessageRepo
	}
	if cfg.Chat == nil {
		return nil, ErrNilChat
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
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

	s := &service{
		roomRepo:      cfg.RoomRepo,
		userRepo:      cfg.UserRepo,
		questionRepo:  cfg.QuestionRepo,
		answerRepo:    cfg.AnswerRepo,
		messageRepo:   cfg.MessageRepo,
		chat:          cfg.Chat,
		clock:         cfg.Clock,
		uuid:          cfg.UUIDGenerator,
		token:         cfg.TokenGenerator,
		shuffler:      cfg.Shuffler,
		listWindow:    cfg.ListWindow,
		listLimit:     cfg.ListLimit,
		optionCount:   cfg.SelectionOptionCount,
		tokenLength:   cfg.TokenLength,
		messageWindow: cfg.MessageWindow,
	}

	if s.listWindow == 0 {
		s.listWindow = DefaultListWindow
	}
	if s.listLimit == 0 {
		s.listLimit = DefaultListLimit
	}
	if s.optionCount == 0 {
		s.optionCount = DefaultSelectionOptionCount
	}
	if s.tokenLength == 0 {
		s.tokenLength = token.DefaultLength
	}
	if s.messageWindow == 0 {
		s.messageWindow = DefaultMessageWindow
	}

	return s, nil
}

// CreateRoom creates a room with the creator as selector
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if !input.Visibility.Valid() {
		return nil, ErrInvalidVisibility
	}
	if !input.VotingMethod.Valid() {
		return nil, ErrInvalidVotingMethod
	}

	name := strings.TrimSpace(input.Name)
	if len(name) > MaxRoomNameLength {
		return nil, ErrRoomNameTooLong
	}
	name = html.EscapeString(name)

	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	newRoom := &models.Room{
		ID:           s.uuid.NewUUID(),
		Name:         name,
		Visibility:   input.Visibility,
		VotingMethod: input.VotingMethod,
		State:        models.RoomStatePickingQuestion,
		LastActive:   now,
		CreatedAt:    now,
	}
	if newRoom.Visibility == models.RoomVisibilityPrivate {
		newRoom.Token = s.token.NewToken(s.tokenLength)
	}

	if err := s.roomRepo.SaveRoom(ctx, &roomRepo.SaveRoomInput{Room: newRoom}); err != nil {
		return nil, err
	}

	member := &models.RoomMember{
		UserID: input.UserID,
		RoomID: newRoom.ID,
		Active: true,
		State:  models.MemberStateSelectingQuestion,
	}
	if err := s.roomRepo.AddMember(ctx, &roomRepo.AddMemberInput{Member: member}); err != nil {
		_ = s.roomRepo.DeleteRoom(ctx, &roomRepo.DeleteRoomInput{RoomID: newRoom.ID})
		return nil, err
	}

	questions, err := s.selectionOffer(ctx, newRoom.ID)
	if err != nil {
		_ = s.roomRepo.DeleteRoom(ctx, &roomRepo.DeleteRoomInput{RoomID: newRoom.ID})
		return nil, err
	}

	out := &CreateRoomOutput{Room: newRoom, Member: member, Questions: questions}
	member.Name = user.Name
	member.Icon = user.Icon

	// The creation message is best effort; the room is already durable
	if user.Configured() {
		if sent, err := s.chat.SendMessage(ctx, &chat.SendMessageInput{
			RoomID: newRoom.ID,
			UserID: input.UserID,
			Body:   "Created the room",
			System: true,
		}); err == nil {
			out.Message = sent.Message
		}
	}

	return out, nil
}

// GetRoom retrieves a room snapshot
func (s *service) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	view, err := s.buildView(ctx, input.RoomID, input.WithMembers, input.WithExtras)
	if err != nil {
		return nil, err
	}

	return &GetRoomOutput{View: view}, nil
}

// ListRooms lists public rooms active within the trailing window
func (s *service) ListRooms(ctx context.Context, _ *ListRoomsInput) (*ListRoomsOutput, error) {
	now := s.clock.Now()
	rooms, err := s.roomRepo.ListPublicRooms(ctx, &roomRepo.ListPublicRoomsInput{
		ActiveSince: now.Add(-s.listWindow),
		Limit:       s.listLimit,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: r.ID})
		if err != nil {
			return nil, err
		}

		active := 0
		for _, m := range members {
			if m.Active {
				active++
			}
		}

		lastActive := r.LastActive
		latest, err := s.messageRepo.GetLatestMessage(ctx, &messageRepo.GetLatestMessageInput{RoomID: r.ID})
		if err != nil {
			return nil, err
		}
		if latest != nil && latest.CreatedAt.After(lastActive) {
			lastActive = latest.CreatedAt
		}

		summaries = append(summaries, &models.RoomSummary{
			ID:            r.ID,
			Name:          r.Name,
			VotingMethod:  r.VotingMethod,
			LastActive:    lastActive,
			Players:       len(members),
			ActivePlayers: active,
		})
	}

	return &ListRoomsOutput{Rooms: summaries}, nil
}

// JoinRoom adds a user to a room or reactivates an existing membership
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error) {
	r, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if r.Visibility != models.RoomVisibilityPublic && r.Token != input.Token {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	out := &JoinRoomOutput{}

	member, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
	})
	switch {
	case err == nil:
		// Rejoin. The stale connection for this member, if any, gets
		// forced out by the caller.
		out.Rejoined = true
		wasActive := member.Active

		if err := s.roomRepo.SetMemberActive(ctx, &roomRepo.SetMemberActiveInput{
			RoomID: input.RoomID,
			UserID: input.UserID,
			Active: true,
			State:  member.State,
		}); err != nil {
			return nil, err
		}
		member.Active = true

		if member.State == models.MemberStateSelectingQuestion {
			questions, err := s.selectionOffer(ctx, input.RoomID)
			if err != nil {
				return nil, err
			}
			out.Questions = questions
		}

		if !wasActive && user.Configured() {
			out.Message = s.systemMessage(ctx, input.RoomID, input.UserID, "Joined the room")
		}

	case errors.Is(err, roomRepo.ErrMemberNotFound):
		state := models.MemberStateIdle
		switch r.State {
		case models.RoomStatePickingQuestion:
			members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: input.RoomID})
			if err != nil {
				return nil, err
			}
			hasSelector := false
			for _, m := range members {
				if m.State == models.MemberStateSelectingQuestion {
					hasSelector = true
					break
				}
			}
			if !hasSelector {
				state = models.MemberStateSelectingQuestion
			}
		case models.RoomStateCollectingAnswers:
			state = models.MemberStateAnsweringQuestion
		}

		member = &models.RoomMember{
			UserID: input.UserID,
			RoomID: input.RoomID,
			Active: true,
			State:  state,
		}
		if err := s.roomRepo.AddMember(ctx, &roomRepo.AddMemberInput{Member: member}); err != nil {
			return nil, err
		}

		if state == models.MemberStateSelectingQuestion {
			questions, err := s.selectionOffer(ctx, input.RoomID)
			if err != nil {
				return nil, err
			}
			out.Questions = questions
		}

		if user.Configured() {
			out.Message = s.systemMessage(ctx, input.RoomID, input.UserID, "Joined the room")
		}

	default:
		return nil, err
	}

	if err := s.roomRepo.MarkActive(ctx, &roomRepo.MarkActiveInput{
		RoomID: input.RoomID,
		Now:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	member.Name = user.Name
	member.Icon = user.Icon
	out.Member = member

	view, err := s.buildView(ctx, input.RoomID, true, true)
	if err != nil {
		return nil, err
	}
	out.View = view

	return out, nil
}

// LeaveRoom deactivates a membership and reassigns any pivotal role
func (s *service) LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error) {
	if input.LoggedOut {
		// A newer connection already owns this membership
		return &LeaveRoomOutput{}, nil
	}

	member, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrMemberNotFound) {
			return nil, ErrNotRoomMember
		}
		return nil, err
	}

	if err := s.roomRepo.SetMemberActive(ctx, &roomRepo.SetMemberActiveInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
		Active: false,
		State:  models.MemberStateIdle,
	}); err != nil {
		return nil, err
	}

	out := &LeaveRoomOutput{Left: true}

	user, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	if user.Configured() {
		out.Message = s.systemMessage(ctx, input.RoomID, input.UserID, "Left the room")
	}

	if err := s.roomRepo.MarkActive(ctx, &roomRepo.MarkActiveInput{
		RoomID: input.RoomID,
		Now:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	if member.State.Pivotal() {
		replacement, questions, err := s.replaceRole(ctx, input.RoomID, input.UserID, member.State)
		if err != nil {
			if errors.Is(err, ErrNoEligibleReplacement) {
				// The leave itself stands; the round can only resume
				// once somebody eligible joins
				return out, err
			}
			return nil, err
		}
		out.Replacement = replacement
		out.Questions = questions
	}

	return out, nil
}

// PlaceKickVote records a kick vote and applies the kick when a strict
// majority of active members agrees
func (s *service) PlaceKickVote(ctx context.Context, input *PlaceKickVoteInput) (*PlaceKickVoteOutput, error) {
	if input.VoterID == input.TargetID {
		return nil, ErrCannotKickSelf
	}

	voter, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.VoterID,
	})
	if err != nil {
		return nil, err
	}
	if !voter.Active {
		return nil, ErrMemberInactive
	}

	target, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.TargetID,
	})
	if err != nil {
		return nil, err
	}

	voters, err := s.roomRepo.PlaceKickVote(ctx, &roomRepo.PlaceKickVoteInput{
		RoomID:   input.RoomID,
		VoterID:  input.VoterID,
		TargetID: input.TargetID,
	})
	if err != nil {
		return nil, err
	}

	out := &PlaceKickVoteOutput{Voters: voters}

	members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}
	active := 0
	for _, m := range members {
		if m.Active {
			active++
		}
	}

	if len(voters)*2 <= active {
		return out, nil
	}

	// A kick removes the membership outright; rejoining starts fresh
	if err := s.roomRepo.RemoveMember(ctx, &roomRepo.RemoveMemberInput{
		RoomID: input.RoomID,
		UserID: input.TargetID,
	}); err != nil {
		return nil, err
	}
	if err := s.roomRepo.ClearKickVotes(ctx, &roomRepo.ClearKickVotesInput{
		RoomID:   input.RoomID,
		TargetID: input.TargetID,
	}); err != nil {
		return nil, err
	}
	out.Kicked = true

	if target.State.Pivotal() {
		replacement, questions, err := s.replaceRole(ctx, input.RoomID, input.TargetID, target.State)
		if err != nil {
			if errors.Is(err, ErrNoEligibleReplacement) {
				return out, err
			}
			return nil, err
		}
		out.Replacement = replacement
		out.Questions = questions
	}

	return out, nil
}

// ActiveRooms lists the rooms a user is currently active in
func (s *service) ActiveRooms(ctx context.Context, input *ActiveRoomsInput) (*ActiveRoomsOutput, error) {
	ids, err := s.roomRepo.GetActiveRoomIDs(ctx, &roomRepo.GetActiveRoomIDsInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	return &ActiveRoomsOutput{RoomIDs: ids}, nil
}

// selectionOffer returns the room's pending question options, sampling
// fresh ones when none are pending
func (s *service) selectionOffer(ctx context.Context, roomID string) ([]*models.Question, error) {
	return s.questionRepo.GetSelectionOptions(ctx, &questionRepo.GetSelectionOptionsInput{
		RoomID: roomID,
		Count:  s.optionCount,
	})
}

// systemMessage posts a system message, best effort
func (s *service) systemMessage(ctx context.Context, roomID, userID, body string) *models.Message {
	sent, err := s.chat.SendMessage(ctx, &chat.SendMessageInput{
		RoomID: roomID,
		UserID: userID,
		Body:   body,
		System: true,
	})
	if err != nil {
		return nil
	}
	return sent.Message
}

// replaceRole hands a departed member's round role to a uniformly
// random active, configured member
func (s *service) replaceRole(ctx context.Context, roomID, departedID string, state models.MemberState) (*models.RoomMember, []*models.Question, error) {
	members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: roomID})
	if err != nil {
		return nil, nil, err
	}
	if err := s.fillMembers(ctx, members); err != nil {
		return nil, nil, err
	}

	eligible := make([]*models.RoomMember, 0, len(members))
	for _, m := range members {
		if m.Active && m.UserID != departedID && m.Configured() {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return nil, nil, ErrNoEligibleReplacement
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].UserID < eligible[j].UserID })

	pick := eligible[s.shuffler.Intn(len(eligible))]
	updated, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: roomID,
		UserID: pick.UserID,
		State:  state,
	})
	if err != nil {
		return nil, nil, err
	}
	updated.Name = pick.Name
	updated.Icon = pick.Icon

	var questions []*models.Question
	if state == models.MemberStateSelectingQuestion {
		if questions, err = s.selectionOffer(ctx, roomID); err != nil {
			return nil, nil, err
		}
	}

	return updated, questions, nil
}

// fillMembers copies display names and icons from the user records
// onto the membership projections
func (s *service) fillMembers(ctx context.Context, members []*models.RoomMember) error {
	if len(members) == 0 {
		return nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	users, err := s.userRepo.GetUsers(ctx, &userRepo.GetUsersInput{UserIDs: ids})
	if err != nil {
		return err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, m := range members {
		if u, ok := byID[m.UserID]; ok {
			m.Name = u.Name
			m.Icon = u.Icon
		}
	}

	return nil
}

// buildView assembles the client-facing room snapshot
func (s *service) buildView(ctx context.Context, roomID string, withMembers, withExtras bool) (*View, error) {
	r, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}

	view := &View{Room: r}

	if withMembers {
		members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: roomID})
		if err != nil {
			return nil, err
		}
		if err := s.fillMembers(ctx, members); err != nil {
			return nil, err
		}
		sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
		view.Members = members
	}

	if !withExtras {
		return view, nil
	}

	messages, err := s.messageRepo.GetRecentMessages(ctx, &messageRepo.GetRecentMessagesInput{
		RoomID: roomID,
		Limit:  s.messageWindow,
	})
	if err != nil {
		return nil, err
	}
	// Repo order is newest first; clients render oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if len(messages) > 0 && messages[0].Type == models.MessageTypeChained {
		// The message it chains onto fell outside the window
		unchained := *messages[0]
		unchained.Type = models.MessageTypeNormal
		messages[0] = &unchained
	}
	view.Messages = messages

	kickVotes, err := s.roomRepo.GetKickVotes(ctx, &roomRepo.GetKickVotesInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	view.KickVotes = kickVotes

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: roomID})
	if err != nil {
		if errors.Is(err, questionRepo.ErrNoQuestionSelected) {
			return view, nil
		}
		return nil, err
	}
	view.SelectedQuestion = selected

	withGuesses := r.State == models.RoomStateViewingResults
	answers, err := s.answerRepo.GetAnswers(ctx, &answerRepo.GetAnswersInput{
		RoomID:      roomID,
		QuestionID:  selected.ID,
		WithGuesses: withGuesses,
	})
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(answers))
	for _, a := range answers {
		authorIDs = append(authorIDs, a.AuthorID)
	}
	sort.Strings(authorIDs)
	view.AnswerUserIDs = authorIDs

	var guessResults map[int]bool
	if withGuesses {
		guessResults = make(map[int]bool)
	}
	for _, a := range answers {
		if a.DisplayPosition == nil {
			continue
		}
		if a.State == models.AnswerStateFavorite {
			pos := *a.DisplayPosition
			view.FavoritePosition = &pos
		}
		if withGuesses {
			guessResults[*a.DisplayPosition] = models.MajorityGuess(a.Guesses) == a.AuthorID
		}
		view.Answers = append(view.Answers, models.StripAnswer(*a))
	}
	view.GuessResults = guessResults

	favorites, err := s.answerRepo.GetPersonalFavorites(ctx, &answerRepo.GetPersonalFavoritesInput{
		RoomID:     roomID,
		QuestionID: selected.ID,
	})
	if err != nil {
		return nil, err
	}
	view.PersonalFavorites = favorites

	return view, nil
}
