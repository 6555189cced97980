package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	"github.com/guesswho-game/guesswho/internal/models"
	chatSvc "github.com/guesswho-game/guesswho/internal/services/chat"
	"github.com/guesswho-game/guesswho/internal/services/identity"
	roomSvc "github.com/guesswho-game/guesswho/internal/services/room"
)

// DefaultIconCount is how many icon names /icons returns
const DefaultIconCount = 15

// Config holds configuration for the web handler
type Config struct {
	// Service dependencies
	Identity identity.Service
	Rooms    roomSvc.Service
	Chat     chatSvc.Service

	// Broadcaster delivers profile-update events to active rooms
	Broadcaster broadcast.Broadcaster

	// Logger for broadcast failures
	Logger *slog.Logger

	// IconCount overrides the /icons batch size; zero falls back to
	// the default
	IconCount int
}

// Handler serves the account and listing endpoints that live outside
// the websocket
type Handler struct {
	identity  identity.Service
	rooms     roomSvc.Service
	chat      chatSvc.Service
	bus       broadcast.Broadcaster
	logger    *slog.Logger
	iconCount int
}

// NewHandler creates a web handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Identity == nil {
		return nil, errors.New("identity service cannot be nil")
	}
	if cfg.Rooms == nil {
		return nil, errors.New("room service cannot be nil")
	}
	if cfg.Chat == nil {
		return nil, errors.New("chat service cannot be nil")
	}
	if cfg.Broadcaster == nil {
		return nil, errors.New("broadcaster cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	iconCount := cfg.IconCount
	if iconCount == 0 {
		iconCount = DefaultIconCount
	}

	return &Handler{
		identity:  cfg.Identity,
		rooms:     cfg.Rooms,
		chat:      cfg.Chat,
		bus:       cfg.Broadcaster,
		logger:    logger,
		iconCount: iconCount,
	}, nil
}

// Register mounts the routes on a mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/status", h.status)
	mux.HandleFunc("/icons", h.icons)
	mux.HandleFunc("/user", h.createUser)
	mux.HandleFunc("/validate-token", h.validateToken)
	mux.HandleFunc("/setup-acc", h.setupAccount)
	mux.HandleFunc("/rooms", h.listRooms)
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *Handler) icons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out, err := h.identity.RandomIcons(r.Context(), &identity.RandomIconsInput{Count: h.iconCount})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"icons": out.Icons})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out, err := h.identity.CreateUser(r.Context(), &identity.CreateUserInput{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    out.User.ID,
		"token": out.User.Token,
	})
}

func (h *Handler) validateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	_, err := h.identity.Validate(r.Context(), &identity.ValidateInput{
		UserID: query.Get("id"),
		Token:  query.Get("token"),
	})
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out, err := h.rooms.ListRooms(r.Context(), &roomSvc.ListRoomsInput{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": out.Rooms})
}

type setupAccountRequest struct {
	ID    string       `json:"id"`
	Token string       `json:"token"`
	Name  string       `json:"name"`
	Icon  *models.Icon `json:"icon"`
}

func (h *Handler) setupAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req setupAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	out, err := h.identity.SetupProfile(r.Context(), &identity.SetupProfileInput{
		UserID: req.ID,
		Token:  req.Token,
		Name:   req.Name,
		Icon:   req.Icon,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrMissingCredentials) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	h.announceProfileChange(r.Context(), out)
}

// announceProfileChange posts a transition message and a userUpdated
// event into every room the user is active in. Failures are logged;
// the profile change is already durable.
func (h *Handler) announceProfileChange(ctx context.Context, setup *identity.SetupProfileOutput) {
	user := setup.User

	body := "Joined the room"
	switch {
	case setup.HadName && setup.HadIcon:
		body = "Updated their profile"
	case setup.HadIcon:
		body = "Changed their icon"
	case setup.HadName:
		body = "Changed their username from " + setup.PreviousName
	}

	active, err := h.rooms.ActiveRooms(ctx, &roomSvc.ActiveRoomsInput{UserID: user.ID})
	if err != nil {
		h.logger.Warn("failed to list active rooms for profile update", "user_id", user.ID, "error", err)
		return
	}

	for _, roomID := range active.RoomIDs {
		payload := map[string]interface{}{
			"id":   user.ID,
			"name": user.Name,
			"icon": user.Icon,
		}

		sent, err := h.chat.SendMessage(ctx, &chatSvc.SendMessageInput{
			RoomID: roomID,
			UserID: user.ID,
			Body:   body,
			System: true,
		})
		if err != nil {
			h.logger.Warn("failed to post profile update message", "room_id", roomID, "error", err)
		} else {
			payload["message"] = sent.Message
		}

		if err := h.bus.Broadcast(ctx, broadcast.Room(roomID), "userUpdated", payload); err != nil {
			h.logger.Warn("failed to broadcast profile update", "room_id", roomID, "error", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
