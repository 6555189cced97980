package answer

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

func (s *RedisRepositoryTestSuite) submitTestAnswer(authorID, text string) {
	err := s.repo.SubmitAnswer(context.Background(), &SubmitAnswerInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   authorID,
		Text:       text,
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestSubmitAnswer() {
	s.submitTestAnswer("user-1", "blue")

	answers, err := s.repo.GetAnswers(context.Background(), &GetAnswersInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Require().Len(answers, 1)
	s.Equal("blue", answers[0].Text)
	s.Equal(models.AnswerStateSubmitted, answers[0].State)
	s.Nil(answers[0].DisplayPosition)

	// A second answer from the same author fails
	err = s.repo.SubmitAnswer(context.Background(), &SubmitAnswerInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   "user-1",
		Text:       "green",
	})
	s.Require().ErrorIs(err, ErrAlreadyAnswered)
}

func (s *RedisRepositoryTestSuite) TestSetDisplayPositionsAndOrdering() {
	s.submitTestAnswer("user-1", "blue")
	s.submitTestAnswer("user-2", "green")
	s.submitTestAnswer("user-3", "red")

	err := s.repo.SetDisplayPositions(context.Background(), &SetDisplayPositionsInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Positions: map[string]int{
			"user-1": 2,
			"user-2": 0,
			"user-3": 1,
		},
	})
	s.Require().NoError(err)

	answers, err := s.repo.GetAnswers(context.Background(), &GetAnswersInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Require().Len(answers, 3)
	s.Equal("green", answers[0].Text)
	s.Equal("red", answers[1].Text)
	s.Equal("blue", answers[2].Text)
}

func (s *RedisRepositoryTestSuite) TestSetDisplayPositionsUnknownAuthor() {
	s.submitTestAnswer("user-1", "blue")

	err := s.repo.SetDisplayPositions(context.Background(), &SetDisplayPositionsInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Positions: map[string]int{
			"user-9": 0,
		},
	})
	s.Require().ErrorIs(err, ErrAnswerNotFound)
}

func (s *RedisRepositoryTestSuite) positionAnswers(positions map[string]int) {
	err := s.repo.SetDisplayPositions(context.Background(), &SetDisplayPositionsInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Positions:  positions,
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestRevealAnswer() {
	s.submitTestAnswer("user-1", "blue")
	s.positionAnswers(map[string]int{"user-1": 0})

	revealed, err := s.repo.RevealAnswer(context.Background(), &RevealAnswerInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   0,
	})
	s.Require().NoError(err)
	s.Equal(models.AnswerStateRevealed, revealed.State)
	s.Equal("user-1", revealed.AuthorID)

	// Revealing twice fails
	_, err = s.repo.RevealAnswer(context.Background(), &RevealAnswerInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   0,
	})
	s.Require().ErrorIs(err, ErrAnswerState)

	// No answer at an unassigned position
	_, err = s.repo.RevealAnswer(context.Background(), &RevealAnswerInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   5,
	})
	s.Require().ErrorIs(err, ErrAnswerNotFound)
}

func (s *RedisRepositoryTestSuite) TestSetFavoriteStateMovesMarker() {
	s.submitTestAnswer("user-1", "blue")
	s.submitTestAnswer("user-2", "green")
	s.positionAnswers(map[string]int{"user-1": 0, "user-2": 1})

	// Favoriting an unrevealed answer fails
	_, err := s.repo.SetFavoriteState(context.Background(), &SetFavoriteStateInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   0,
	})
	s.Require().ErrorIs(err, ErrAnswerState)

	for pos := 0; pos < 2; pos++ {
		_, err := s.repo.RevealAnswer(context.Background(), &RevealAnswerInput{
			RoomID:     "test-room-id",
			QuestionID: "question-1",
			Position:   pos,
		})
		s.Require().NoError(err)
	}

	favorite, err := s.repo.SetFavoriteState(context.Background(), &SetFavoriteStateInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   0,
	})
	s.Require().NoError(err)
	s.Equal("user-1", favorite.AuthorID)
	s.Equal(models.AnswerStateFavorite, favorite.State)

	// Moving the marker demotes the previous favorite
	favorite, err = s.repo.SetFavoriteState(context.Background(), &SetFavoriteStateInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		Position:   1,
	})
	s.Require().NoError(err)
	s.Equal("user-2", favorite.AuthorID)

	answers, err := s.repo.GetAnswers(context.Background(), &GetAnswersInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Equal(models.AnswerStateRevealed, answers[0].State)
	s.Equal(models.AnswerStateFavorite, answers[1].State)
}

func (s *RedisRepositoryTestSuite) TestPutGuess() {
	s.submitTestAnswer("user-1", "blue")

	out, err := s.repo.PutGuess(context.Background(), &PutGuessInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   "user-1",
		GuesserID:  "user-2",
		GuessedID:  "user-3",
	})
	s.Require().NoError(err)
	s.True(out.Changed)

	// Repeating the same guess is a no-op
	out, err = s.repo.PutGuess(context.Background(), &PutGuessInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   "user-1",
		GuesserID:  "user-2",
		GuessedID:  "user-3",
	})
	s.Require().NoError(err)
	s.False(out.Changed)

	// A revised guess replaces the old one
	out, err = s.repo.PutGuess(context.Background(), &PutGuessInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   "user-1",
		GuesserID:  "user-2",
		GuessedID:  "user-1",
	})
	s.Require().NoError(err)
	s.True(out.Changed)

	answers, err := s.repo.GetAnswers(context.Background(), &GetAnswersInput{
		RoomID:      "test-room-id",
		QuestionID:  "question-1",
		WithGuesses: true,
	})
	s.Require().NoError(err)
	s.Require().Len(answers, 1)
	s.Require().Len(answers[0].Guesses, 1)
	s.Equal("user-2", answers[0].Guesses[0].UserID)
	s.Equal("user-1", answers[0].Guesses[0].GuessedID)
}

func (s *RedisRepositoryTestSuite) TestPersonalFavorites() {
	favorites, err := s.repo.GetPersonalFavorites(context.Background(), &GetPersonalFavoritesInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Empty(favorites)

	err = s.repo.SetPersonalFavorite(context.Background(), &SetPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-2",
		Position:   1,
		Now:        s.testNow,
	})
	s.Require().NoError(err)

	err = s.repo.SetPersonalFavorite(context.Background(), &SetPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-1",
		Position:   0,
		Now:        s.testNow.Add(time.Minute),
	})
	s.Require().NoError(err)

	// Earliest pick first
	favorites, err = s.repo.GetPersonalFavorites(context.Background(), &GetPersonalFavoritesInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Require().Len(favorites, 2)
	s.Equal("user-2", favorites[0].UserID)
	s.Equal(1, favorites[0].DisplayPosition)
	s.Equal("user-1", favorites[1].UserID)

	// Moving a pick keeps its original registration time
	err = s.repo.SetPersonalFavorite(context.Background(), &SetPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-2",
		Position:   2,
		Now:        s.testNow.Add(time.Hour),
	})
	s.Require().NoError(err)

	favorites, err = s.repo.GetPersonalFavorites(context.Background(), &GetPersonalFavoritesInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Require().Len(favorites, 2)
	s.Equal("user-2", favorites[0].UserID)
	s.Equal(2, favorites[0].DisplayPosition)
}

func (s *RedisRepositoryTestSuite) TestClearPersonalFavorite() {
	err := s.repo.SetPersonalFavorite(context.Background(), &SetPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-1",
		Position:   0,
		Now:        s.testNow,
	})
	s.Require().NoError(err)

	err = s.repo.ClearPersonalFavorite(context.Background(), &ClearPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-1",
	})
	s.Require().NoError(err)

	favorites, err := s.repo.GetPersonalFavorites(context.Background(), &GetPersonalFavoritesInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Empty(favorites)
}

func (s *RedisRepositoryTestSuite) TestClearRound() {
	s.submitTestAnswer("user-1", "blue")
	s.positionAnswers(map[string]int{"user-1": 0})

	_, err := s.repo.PutGuess(context.Background(), &PutGuessInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		AuthorID:   "user-1",
		GuesserID:  "user-2",
		GuessedID:  "user-1",
	})
	s.Require().NoError(err)

	err = s.repo.SetPersonalFavorite(context.Background(), &SetPersonalFavoriteInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
		UserID:     "user-2",
		Position:   0,
		Now:        s.testNow,
	})
	s.Require().NoError(err)

	err = s.repo.ClearRound(context.Background(), &ClearRoundInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)

	answers, err := s.repo.GetAnswers(context.Background(), &GetAnswersInput{
		RoomID:      "test-room-id",
		QuestionID:  "question-1",
		WithGuesses: true,
	})
	s.Require().NoError(err)
	s.Empty(answers)

	favorites, err := s.repo.GetPersonalFavorites(context.Background(), &GetPersonalFavoritesInput{
		RoomID:     "test-room-id",
		QuestionID: "question-1",
	})
	s.Require().NoError(err)
	s.Empty(favorites)

	// A fresh answer can be submitted after cleanup
	s.submitTestAnswer("user-1", "green")
}
