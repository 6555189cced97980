package ws

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	"github.com/guesswho-game/guesswho/internal/models"
	chatSvc "github.com/guesswho-game/guesswho/internal/services/chat"
	gameSvc "github.com/guesswho-game/guesswho/internal/services/game"
	roomSvc "github.com/guesswho-game/guesswho/internal/services/room"
)

// decode parses a command payload against its schema; unknown or
// malformed fields fail before any state is touched
func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadPayload
	}
	return nil
}

// dispatch routes a command to its handler
func (c *client) dispatch(ctx context.Context, env *envelope) (interface{}, error) {
	switch env.Action {
	case "createRoom":
		return c.createRoom(ctx, env.Data)
	case "joinRoom":
		return c.joinRoom(ctx, env.Data)
	case "leaveRoom":
		return c.leaveRoom(ctx, env.Data)
	case "forcedLogout":
		return c.forcedLogout(ctx, env.Data)
	case "suggestQuestion":
		return c.suggestQuestion(ctx, env.Data)
	case "submitQuestion":
		return c.submitQuestion(ctx, env.Data)
	case "submitAnswer":
		return c.submitAnswer(ctx, env.Data)
	case "startReadingAnswers":
		return c.startReadingAnswers(ctx, env.Data)
	case "revealAnswer":
		return c.revealAnswer(ctx, env.Data)
	case "setFavoriteAnswer":
		return c.setFavoriteAnswer(ctx, env.Data)
	case "clearFavoriteAnswer":
		return c.clearFavoriteAnswer(ctx, env.Data)
	case "makeAuthorGuess":
		return c.makeAuthorGuess(ctx, env.Data)
	case "finalizeGuesses":
		return c.finalizeGuesses(ctx, env.Data)
	case "resetRound":
		return c.resetRound(ctx, env.Data)
	case "voteKick":
		return c.voteKick(ctx, env.Data)
	case "sendMessage":
		return c.sendMessage(ctx, env.Data)
	case "editMessage":
		return c.editMessage(ctx, env.Data)
	case "deleteMessage":
		return c.deleteMessage(ctx, env.Data)
	case "likeMessage":
		return c.likeMessage(ctx, env.Data)
	case "unlikeMessage":
		return c.unlikeMessage(ctx, env.Data)
	default:
		return nil, ErrUnknownCommand
	}
}

// requireRoom returns the joined room or fails the command
func (c *client) requireRoom() (string, error) {
	roomID := c.currentRoom()
	if roomID == "" {
		return "", ErrNotInRoom
	}
	return roomID, nil
}

func (c *client) createRoom(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p createRoomPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}

	if err := c.leaveCurrentRoom(ctx); err != nil {
		return nil, err
	}

	out, err := c.h.rooms.CreateRoom(ctx, &roomSvc.CreateRoomInput{
		UserID:       c.userID,
		Name:         p.Name,
		Visibility:   models.RoomVisibility(p.Visibility),
		VotingMethod: models.VotingMethod(p.VotingMethod),
	})
	if err != nil {
		return nil, err
	}

	c.joinGroups(out.Room.ID)

	view, err := c.h.rooms.GetRoom(ctx, &roomSvc.GetRoomInput{
		RoomID:      out.Room.ID,
		WithMembers: true,
		WithExtras:  true,
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"room":      view.View,
		"questions": out.Questions,
	}, nil
}

func (c *client) joinRoom(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p joinRoomPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}

	if err := c.leaveCurrentRoom(ctx); err != nil {
		return nil, err
	}

	out, err := c.h.rooms.JoinRoom(ctx, &roomSvc.JoinRoomInput{
		RoomID: p.ID,
		UserID: c.userID,
		Token:  p.Token,
	})
	if err != nil {
		return nil, err
	}

	if out.Rejoined {
		// Only one connection may represent a member in a room; the
		// stale one gets told to log itself out
		c.broadcast(ctx, broadcast.RoomParticipant(p.ID, c.userID), "forceLogout", struct{}{})
	}

	c.joinGroups(p.ID)

	joined := map[string]interface{}{"user": out.Member}
	if out.Message != nil {
		joined["message"] = out.Message
	}
	c.broadcast(ctx, broadcast.Room(p.ID), "userJoined", joined)

	if len(out.Questions) > 0 && out.Member.State == models.MemberStateSelectingQuestion {
		c.broadcast(ctx, broadcast.RoomParticipant(p.ID, c.userID),
			"newQuestionsList", map[string]interface{}{"questions": out.Questions})
	}

	return map[string]interface{}{"room": out.View}, nil
}

func (c *client) leaveRoom(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}

	if _, err := c.requireRoom(); err != nil {
		return nil, err
	}
	if err := c.leaveCurrentRoom(ctx); err != nil {
		return nil, err
	}

	return map[string]interface{}{"success": true}, nil
}

// forcedLogout is sent by a connection that received forceLogout; its
// later disconnect must not deactivate the membership the newer
// connection now owns
func (c *client) forcedLogout(_ context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}

	c.markLoggedOut()
	return map[string]interface{}{"success": true}, nil
}

func (c *client) suggestQuestion(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p suggestQuestionPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}

	out, err := c.h.game.SuggestQuestion(ctx, &gameSvc.SuggestQuestionInput{
		UserID: c.userID,
		Text:   p.Question,
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"success": true, "questionId": out.QuestionID}, nil
}

func (c *client) submitQuestion(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p submitQuestionPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.SubmitQuestion(ctx, &gameSvc.SubmitQuestionInput{
		RoomID:     roomID,
		UserID:     c.userID,
		QuestionID: p.ID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "questionSelected", map[string]interface{}{
		"question":   out.Question,
		"selectedBy": out.SelectedBy,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) submitAnswer(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p submitAnswerPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.SubmitAnswer(ctx, &gameSvc.SubmitAnswerInput{
		RoomID: roomID,
		UserID: c.userID,
		Text:   p.Answer,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "userStateChanged", map[string]interface{}{
		"id":    c.userID,
		"state": out.State,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) startReadingAnswers(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.StartReadingAnswers(ctx, &gameSvc.StartReadingAnswersInput{
		RoomID: roomID,
		UserID: c.userID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "startReadingAnswers", map[string]interface{}{
		"answers":       out.Answers,
		"answerUserIds": out.AnswerUserIDs,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) revealAnswer(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p positionPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.RevealAnswer(ctx, &gameSvc.RevealAnswerInput{
		RoomID:   roomID,
		UserID:   c.userID,
		Position: p.DisplayPosition,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "answerRevealed", map[string]interface{}{
		"answer": out.Answer,
	})

	return map[string]interface{}{"answer": out.Answer}, nil
}

func (c *client) setFavoriteAnswer(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p positionPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.SetFavoriteAnswer(ctx, &gameSvc.SetFavoriteAnswerInput{
		RoomID:   roomID,
		UserID:   c.userID,
		Position: p.DisplayPosition,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "answerFavorited", map[string]interface{}{
		"displayPosition": out.Position,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) clearFavoriteAnswer(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	if _, err := c.h.game.ClearFavoriteAnswer(ctx, &gameSvc.ClearFavoriteAnswerInput{
		RoomID: roomID,
		UserID: c.userID,
	}); err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "favoriteAnswerCleared", struct{}{})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) makeAuthorGuess(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p makeGuessPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.MakeAuthorGuess(ctx, &gameSvc.MakeAuthorGuessInput{
		RoomID:    roomID,
		UserID:    c.userID,
		Position:  p.DisplayPosition,
		GuessedID: p.GuessedUserID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "answerGuessed", map[string]interface{}{
		"displayPosition": out.Position,
		"guessedUserId":   out.GuessedID,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) finalizeGuesses(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.FinalizeGuesses(ctx, &gameSvc.FinalizeGuessesInput{
		RoomID: roomID,
		UserID: c.userID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "startViewingResults", map[string]interface{}{
		"guessResults": out.GuessResults,
		"winnerId":     out.WinnerID,
		"askingNextId": out.AskingNextID,
	})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) resetRound(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p emptyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.game.ResetRound(ctx, &gameSvc.ResetRoundInput{
		RoomID: roomID,
		UserID: c.userID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "roundReset", map[string]interface{}{
		"selectorId": out.SelectorID,
	})
	c.broadcast(ctx, broadcast.RoomParticipant(roomID, out.SelectorID),
		"newQuestionsList", map[string]interface{}{"questions": out.Questions})

	return map[string]interface{}{"success": true}, nil
}

func (c *client) voteKick(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p voteKickPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.rooms.PlaceKickVote(ctx, &roomSvc.PlaceKickVoteInput{
		RoomID:   roomID,
		VoterID:  c.userID,
		TargetID: p.TargetID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "kickVotePlaced", map[string]interface{}{
		"targetId": p.TargetID,
		"voters":   out.Voters,
	})

	if out.Kicked {
		left := map[string]interface{}{"id": p.TargetID}
		if out.Replacement != nil {
			left["additionalUpdate"] = map[string]interface{}{
				"id":    out.Replacement.UserID,
				"state": out.Replacement.State,
			}
		}
		c.broadcast(ctx, broadcast.Room(roomID), "userLeft", left)
		c.broadcast(ctx, broadcast.RoomParticipant(roomID, p.TargetID), "forceLogout", struct{}{})

		if out.Replacement != nil && len(out.Questions) > 0 {
			c.broadcast(ctx, broadcast.RoomParticipant(roomID, out.Replacement.UserID),
				"newQuestionsList", map[string]interface{}{"questions": out.Questions})
		}
	}

	return map[string]interface{}{"success": true, "kicked": out.Kicked}, nil
}

func (c *client) sendMessage(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p sendMessagePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.chat.SendMessage(ctx, &chatSvc.SendMessageInput{
		RoomID: roomID,
		UserID: c.userID,
		Body:   p.Body,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "messageSent", map[string]interface{}{
		"message": out.Message,
	})

	return map[string]interface{}{"message": out.Message}, nil
}

func (c *client) editMessage(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p editMessagePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.chat.EditMessage(ctx, &chatSvc.EditMessageInput{
		RoomID:    roomID,
		UserID:    c.userID,
		MessageID: p.ID,
		Body:      p.Body,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "messageEdited", map[string]interface{}{
		"message": out.Message,
	})

	return map[string]interface{}{"message": out.Message}, nil
}

func (c *client) deleteMessage(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p messageIDPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.chat.DeleteMessage(ctx, &chatSvc.DeleteMessageInput{
		RoomID:    roomID,
		UserID:    c.userID,
		MessageID: p.ID,
	})
	if err != nil {
		return nil, err
	}

	deleted := map[string]interface{}{"id": p.ID}
	if out.UnchainedMessageID != nil {
		deleted["unchainedMessageId"] = *out.UnchainedMessageID
	}
	c.broadcast(ctx, broadcast.Room(roomID), "messageDeleted", deleted)

	result := map[string]interface{}{"success": true}
	if out.UnchainedMessageID != nil {
		result["unchainedMessageId"] = *out.UnchainedMessageID
	}
	return result, nil
}

func (c *client) likeMessage(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p messageIDPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.chat.LikeMessage(ctx, &chatSvc.LikeMessageInput{
		RoomID:    roomID,
		UserID:    c.userID,
		MessageID: p.ID,
	})
	if err != nil {
		return nil, err
	}

	c.broadcast(ctx, broadcast.Room(roomID), "messageLiked", map[string]interface{}{
		"id":   p.ID,
		"like": out.Like,
	})

	return map[string]interface{}{"like": out.Like}, nil
}

func (c *client) unlikeMessage(ctx context.Context, data json.RawMessage) (interface{}, error) {
	var p messageIDPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	roomID, err := c.requireRoom()
	if err != nil {
		return nil, err
	}

	out, err := c.h.chat.UnlikeMessage(ctx, &chatSvc.UnlikeMessageInput{
		RoomID:    roomID,
		UserID:    c.userID,
		MessageID: p.ID,
	})
	if err != nil {
		return nil, err
	}

	if out.Removed {
		c.broadcast(ctx, broadcast.Room(roomID), "messageUnliked", map[string]interface{}{
			"id":     p.ID,
			"userId": c.userID,
		})
	}

	return map[string]interface{}{"success": out.Removed}, nil
}
