package game

import (
	"context"
	"html"
	"sort"
	"strings"

	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/models"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
)

// service implements the Service interface
type service struct {
	roomRepo     roomRepo.Repository
	userRepo     userRepo.Repository
	questionRepo questionRepo.Repository
	answerRepo   answerRepo.Repository
	clock        clock.Clock
	uuid         uuid.UUID
	shuffler     shuffle.Shuffler
	optionCount  int
}

// New creates a new game service
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
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}
	if cfg.Shuffler == nil {
		return nil, ErrNilShuffler
	}

	optionCount := cfg.SelectionOptionCount
	if optionCount == 0 {
		optionCount = DefaultSelectionOptionCount
	}

	return &service{
		roomRepo:     cfg.RoomRepo,
		userRepo:     cfg.UserRepo,
		questionRepo: cfg.QuestionRepo,
		answerRepo:   cfg.AnswerRepo,
		clock:        cfg.Clock,
		uuid:         cfg.UUIDGenerator,
		shuffler:     cfg.Shuffler,
		optionCount:  optionCount,
	}, nil
}

// SuggestQuestion adds a player-suggested question to the global pool
func (s *service) SuggestQuestion(ctx context.Context, input *SuggestQuestionInput) (*SuggestQuestionOutput, error) {
	text := strings.TrimSpace(input.Text)
	if len(text) == 0 {
		return nil, ErrQuestionTooShort
	}
	if len(text) > MaxQuestionLength {
		return nil, ErrQuestionTooLong
	}

	q := &models.Question{
		ID:   s.uuid.NewUUID(),
		Text: html.EscapeString(text),
	}
	if err := s.questionRepo.AddQuestion(ctx, &questionRepo.AddQuestionInput{Question: q}); err != nil {
		return nil, err
	}

	return &SuggestQuestionOutput{QuestionID: q.ID}, nil
}

// SeedQuestions fills an empty pool from a starter catalog
func (s *service) SeedQuestions(ctx context.Context, input *SeedQuestionsInput) (*SeedQuestionsOutput, error) {
	count, err := s.questionRepo.CountQuestions(ctx, &questionRepo.CountQuestionsInput{})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &SeedQuestionsOutput{}, nil
	}

	out := &SeedQuestionsOutput{}
	for _, text := range input.Texts {
		text = strings.TrimSpace(text)
		if len(text) == 0 || len(text) > MaxQuestionLength {
			continue
		}

		q := &models.Question{
			ID:   s.uuid.NewUUID(),
			Text: html.EscapeString(text),
		}
		if err := s.questionRepo.AddQuestion(ctx, &questionRepo.AddQuestionInput{Question: q}); err != nil {
			return nil, err
		}
		out.Added++
	}

	return out, nil
}

// SubmitQuestion marks the selector's choice and starts collecting
// answers
func (s *service) SubmitQuestion(ctx context.Context, input *SubmitQuestionInput) (*SubmitQuestionOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStatePickingQuestion); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateSelectingQuestion); err != nil {
		return nil, err
	}

	q, err := s.questionRepo.GetQuestion(ctx, &questionRepo.GetQuestionInput{QuestionID: input.QuestionID})
	if err != nil {
		return nil, err
	}

	if err := s.questionRepo.SelectQuestion(ctx, &questionRepo.SelectQuestionInput{
		RoomID:     input.RoomID,
		QuestionID: input.QuestionID,
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetState(ctx, &roomRepo.SetStateInput{
		RoomID:   input.RoomID,
		Expected: models.RoomStatePickingQuestion,
		Next:     models.RoomStateCollectingAnswers,
		Now:      s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetAllMemberStates(ctx, &roomRepo.SetAllMemberStatesInput{
		RoomID: input.RoomID,
		State:  models.MemberStateAnsweringQuestion,
	}); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
		State:  models.MemberStateAskingQuestion,
	}); err != nil {
		return nil, err
	}

	return &SubmitQuestionOutput{Question: q, SelectedBy: input.UserID}, nil
}

// SubmitAnswer records a member's answer and idles them
func (s *service) SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) (*SubmitAnswerOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateCollectingAnswers); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateAnsweringQuestion); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if len(text) == 0 {
		return nil, ErrAnswerTooShort
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if err := s.answerRepo.SubmitAnswer(ctx, &answerRepo.SubmitAnswerInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		AuthorID:   input.UserID,
		Text:       html.EscapeString(text),
	}); err != nil {
		return nil, err
	}

	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
		State:  models.MemberStateIdle,
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.MarkActive(ctx, &roomRepo.MarkActiveInput{
		RoomID: input.RoomID,
		Now:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	return &SubmitAnswerOutput{State: models.MemberStateIdle}, nil
}

// StartReadingAnswers shuffles active members' answers into display
// positions and opens the reveal phase
func (s *service) StartReadingAnswers(ctx context.Context, input *StartReadingAnswersInput) (*StartReadingAnswersOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateCollectingAnswers); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateAskingQuestion); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.GetAnswers(ctx, &answerRepo.GetAnswersInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
	})
	if err != nil {
		return nil, err
	}

	members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Active {
			active[m.UserID] = true
		}
	}

	// Answers from members who dropped out stay unpositioned and out
	// of play
	inPlay := make([]*models.Answer, 0, len(answers))
	for _, a := range answers {
		if active[a.AuthorID] {
			inPlay = append(inPlay, a)
		}
	}
	if len(inPlay) == 0 {
		return nil, ErrNoAnswers
	}
	sort.Slice(inPlay, func(i, j int) bool { return inPlay[i].AuthorID < inPlay[j].AuthorID })

	perm := s.shuffler.Perm(len(inPlay))
	positions := make(map[string]int, len(inPlay))
	for i, a := range inPlay {
		positions[a.AuthorID] = perm[i]
		pos := perm[i]
		a.DisplayPosition = &pos
	}

	if err := s.answerRepo.SetDisplayPositions(ctx, &answerRepo.SetDisplayPositionsInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		Positions:  positions,
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetState(ctx, &roomRepo.SetStateInput{
		RoomID:   input.RoomID,
		Expected: models.RoomStateCollectingAnswers,
		Next:     models.RoomStateReadingAnswers,
		Now:      s.clock.Now(),
	}); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
		State:  models.MemberStateReadingAnswers,
	}); err != nil {
		return nil, err
	}

	out := &StartReadingAnswersOutput{}
	sort.Slice(inPlay, func(i, j int) bool { return *inPlay[i].DisplayPosition < *inPlay[j].DisplayPosition })
	for _, a := range inPlay {
		out.AnswerUserIDs = append(out.AnswerUserIDs, a.AuthorID)
		out.Answers = append(out.Answers, models.StripAnswer(*a))
	}
	sort.Strings(out.AnswerUserIDs)

	return out, nil
}

// RevealAnswer flips the answer at a position to REVEALED
func (s *service) RevealAnswer(ctx context.Context, input *RevealAnswerInput) (*RevealAnswerOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateReadingAnswers); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateReadingAnswers); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	revealed, err := s.answerRepo.RevealAnswer(ctx, &answerRepo.RevealAnswerInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		Position:   input.Position,
	})
	if err != nil {
		return nil, err
	}

	if err := s.roomRepo.MarkActive(ctx, &roomRepo.MarkActiveInput{
		RoomID: input.RoomID,
		Now:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	return &RevealAnswerOutput{Answer: models.StripAnswer(*revealed)}, nil
}

// SetFavoriteAnswer records the reader's favorite pick
func (s *service) SetFavoriteAnswer(ctx context.Context, input *SetFavoriteAnswerInput) (*SetFavoriteAnswerOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateReadingAnswers); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateReadingAnswers); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	a, err := s.answerRepo.GetAnswerByPosition(ctx, &answerRepo.GetAnswerByPositionInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		Position:   input.Position,
	})
	if err != nil {
		return nil, err
	}
	if a.State == models.AnswerStateSubmitted {
		return nil, ErrAnswerNotRevealed
	}

	if err := s.answerRepo.SetPersonalFavorite(ctx, &answerRepo.SetPersonalFavoriteInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		UserID:     input.UserID,
		Position:   input.Position,
		Now:        s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	return &SetFavoriteAnswerOutput{Position: input.Position}, nil
}

// ClearFavoriteAnswer removes the reader's favorite pick
func (s *service) ClearFavoriteAnswer(ctx context.Context, input *ClearFavoriteAnswerInput) (*ClearFavoriteAnswerOutput, error) {
	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateReadingAnswers); err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateReadingAnswers); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	if err := s.answerRepo.ClearPersonalFavorite(ctx, &answerRepo.ClearPersonalFavoriteInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		UserID:     input.UserID,
	}); err != nil {
		return nil, err
	}

	return &ClearFavoriteAnswerOutput{}, nil
}

// MakeAuthorGuess records or revises a guess about an answer's author
func (s *service) MakeAuthorGuess(ctx context.Context, input *MakeAuthorGuessInput) (*MakeAuthorGuessOutput, error) {
	if input.GuessedID == input.UserID {
		return nil, ErrGuessSelf
	}

	if _, err := s.roomInState(ctx, input.RoomID, models.RoomStateReadingAnswers); err != nil {
		return nil, err
	}

	guesser, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
	})
	if err != nil {
		return nil, err
	}
	if !guesser.Active {
		return nil, ErrMemberInactive
	}

	// The guessed user must actually be in the room
	if _, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.GuessedID,
	}); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	a, err := s.answerRepo.GetAnswerByPosition(ctx, &answerRepo.GetAnswerByPositionInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		Position:   input.Position,
	})
	if err != nil {
		return nil, err
	}
	if a.State == models.AnswerStateSubmitted {
		return nil, ErrAnswerNotRevealed
	}

	res, err := s.answerRepo.PutGuess(ctx, &answerRepo.PutGuessInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		AuthorID:   a.AuthorID,
		GuesserID:  input.UserID,
		GuessedID:  input.GuessedID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.roomRepo.MarkActive(ctx, &roomRepo.MarkActiveInput{
		RoomID: input.RoomID,
		Now:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	return &MakeAuthorGuessOutput{
		Position:  input.Position,
		GuessedID: input.GuessedID,
		Changed:   res.Changed,
	}, nil
}

// FinalizeGuesses closes guessing, crowns the winner and shows results
func (s *service) FinalizeGuesses(ctx context.Context, input *FinalizeGuessesInput) (*FinalizeGuessesOutput, error) {
	r, err := s.roomInState(ctx, input.RoomID, models.RoomStateReadingAnswers)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberInState(ctx, input.RoomID, input.UserID, models.MemberStateReadingAnswers); err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	favorites, err := s.answerRepo.GetPersonalFavorites(ctx, &answerRepo.GetPersonalFavoritesInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
	})
	if err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return nil, ErrFavoriteRequired
	}

	answers, err := s.answerRepo.GetAnswers(ctx, &answerRepo.GetAnswersInput{
		RoomID:      input.RoomID,
		QuestionID:  selected.ID,
		WithGuesses: true,
	})
	if err != nil {
		return nil, err
	}

	winnerPosition := favorites[0].DisplayPosition
	winnerID := ""
	guessResults := make(map[int]bool)

	for _, a := range answers {
		if a.DisplayPosition == nil {
			continue
		}
		if len(a.Guesses) == 0 {
			return nil, ErrUnguessedAnswers
		}
		if *a.DisplayPosition == winnerPosition {
			winnerID = a.AuthorID
		}
		guessResults[*a.DisplayPosition] = models.MajorityGuess(a.Guesses) == a.AuthorID
	}
	if winnerID == "" {
		return nil, ErrNoWinner
	}

	// Under ROTATE the next asker must exist before anything commits
	askingNextID := ""
	if r.VotingMethod == models.VotingMethodRotate {
		if askingNextID, err = s.nextAsker(ctx, input.RoomID, input.UserID); err != nil {
			return nil, err
		}
	}

	if _, err := s.answerRepo.SetFavoriteState(ctx, &answerRepo.SetFavoriteStateInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
		Position:   winnerPosition,
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetState(ctx, &roomRepo.SetStateInput{
		RoomID:   input.RoomID,
		Expected: models.RoomStateReadingAnswers,
		Next:     models.RoomStateViewingResults,
		Now:      s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
		State:  models.MemberStateAskedQuestion,
	}); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID:     input.RoomID,
		UserID:     winnerID,
		State:      models.MemberStateWinner,
		ScoreDelta: 1,
	}); err != nil {
		return nil, err
	}
	if askingNextID != "" {
		if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
			RoomID: input.RoomID,
			UserID: askingNextID,
			State:  models.MemberStateAskingNext,
		}); err != nil {
			return nil, err
		}
	}

	return &FinalizeGuessesOutput{
		GuessResults: guessResults,
		WinnerID:     winnerID,
		AskingNextID: askingNextID,
	}, nil
}

// ResetRound clears the round and hands the selector role to the next
// member per the voting method
func (s *service) ResetRound(ctx context.Context, input *ResetRoundInput) (*ResetRoundOutput, error) {
	r, err := s.roomInState(ctx, input.RoomID, models.RoomStateViewingResults)
	if err != nil {
		return nil, err
	}

	caller, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{
		RoomID: input.RoomID,
		UserID: input.UserID,
	})
	if err != nil {
		return nil, err
	}
	if !caller.Active {
		return nil, ErrMemberInactive
	}

	members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}

	// The role states are wiped below, so pick the selector first
	selectorID, err := s.pickSelector(ctx, r, members)
	if err != nil {
		return nil, err
	}

	selected, err := s.questionRepo.GetSelectedQuestion(ctx, &questionRepo.GetSelectedQuestionInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}
	if err := s.answerRepo.ClearRound(ctx, &answerRepo.ClearRoundInput{
		RoomID:     input.RoomID,
		QuestionID: selected.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.questionRepo.ClearRoundQuestions(ctx, &questionRepo.ClearRoundQuestionsInput{RoomID: input.RoomID}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetAllMemberStates(ctx, &roomRepo.SetAllMemberStatesInput{
		RoomID: input.RoomID,
		State:  models.MemberStateIdle,
	}); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetState(ctx, &roomRepo.SetStateInput{
		RoomID:   input.RoomID,
		Expected: models.RoomStateViewingResults,
		Next:     models.RoomStatePickingQuestion,
		Now:      s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	if _, err := s.roomRepo.SetMemberState(ctx, &roomRepo.SetMemberStateInput{
		RoomID: input.RoomID,
		UserID: selectorID,
		State:  models.MemberStateSelectingQuestion,
	}); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetSelectionOptions(ctx, &questionRepo.GetSelectionOptionsInput{
		RoomID: input.RoomID,
		Count:  s.optionCount,
	})
	if err != nil {
		return nil, err
	}

	return &ResetRoundOutput{SelectorID: selectorID, Questions: questions}, nil
}

// roomInState retrieves the room and checks its round state
func (s *service) roomInState(ctx context.Context, roomID string, state models.RoomState) (*models.Room, error) {
	r, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	if r.State != state {
		return nil, ErrRoomState
	}
	return r, nil
}

// memberInState retrieves a membership and checks it is active and in
// the given sub-state
func (s *service) memberInState(ctx context.Context, roomID, userID string, state models.MemberState) (*models.RoomMember, error) {
	m, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberInput{RoomID: roomID, UserID: userID})
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, ErrMemberInactive
	}
	if m.State != state {
		return nil, ErrMemberState
	}
	return m, nil
}

// nextAsker scans forward from the current asker through a stable
// ordering of member IDs, wrapping once, for the first other active,
// configured member
func (s *service) nextAsker(ctx context.Context, roomID, askerID string) (string, error) {
	members, err := s.roomRepo.GetMembers(ctx, &roomRepo.GetMembersInput{RoomID: roomID})
	if err != nil {
		return "", err
	}
	configured, err := s.configuredSet(ctx, members)
	if err != nil {
		return "", err
	}

	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	start := 0
	for i, m := range members {
		if m.UserID == askerID {
			start = i
			break
		}
	}

	for i := 1; i <= len(members); i++ {
		m := members[(start+i)%len(members)]
		if m.UserID == askerID || !m.Active || !configured[m.UserID] {
			continue
		}
		return m.UserID, nil
	}

	return "", ErrNoNextAsker
}

// pickSelector chooses the next question selector per voting method
func (s *service) pickSelector(ctx context.Context, r *models.Room, members []*models.RoomMember) (string, error) {
	switch r.VotingMethod {
	case models.VotingMethodWinner, models.VotingMethodRotate:
		role := models.MemberStateWinner
		if r.VotingMethod == models.VotingMethodRotate {
			role = models.MemberStateAskingNext
		}
		for _, m := range members {
			if m.State == role && m.Active {
				return m.UserID, nil
			}
		}
		return "", ErrNoEligibleSelector

	default:
		// Democratic voting falls back to a uniformly random active,
		// configured member
		configured, err := s.configuredSet(ctx, members)
		if err != nil {
			return "", err
		}
		eligible := make([]string, 0, len(members))
		for _, m := range members {
			if m.Active && configured[m.UserID] {
				eligible = append(eligible, m.UserID)
			}
		}
		if len(eligible) == 0 {
			return "", ErrNoEligibleSelector
		}
		sort.Strings(eligible)
		return eligible[s.shuffler.Intn(len(eligible))], nil
	}
}

// configuredSet reports which members have completed profile setup
func (s *service) configuredSet(ctx context.Context, members []*models.RoomMember) (map[string]bool, error) {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	users, err := s.userRepo.GetUsers(ctx, &userRepo.GetUsersInput{UserIDs: ids})
	if err != nil {
		return nil, err
	}

	configured := make(map[string]bool, len(users))
	for _, u := range users {
		if u.Configured() {
			configured[u.ID] = true
		}
	}
	return configured, nil
}
