package ws

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	"github.com/guesswho-game/guesswho/internal/services/chat"
	"github.com/guesswho-game/guesswho/internal/services/game"
	"github.com/guesswho-game/guesswho/internal/services/identity"
	"github.com/guesswho-game/guesswho/internal/services/room"
)

// Handler upgrades connections and dispatches their commands
type Handler struct {
	identity identity.Service
	rooms    room.Service
	game     game.Service
	chat     chat.Service
	hub      *broadcast.Hub
	bus      broadcast.Broadcaster
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler
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
	if cfg.Game == nil {
		return nil, errors.New("game service cannot be nil")
	}
	if cfg.Chat == nil {
		return nil, errors.New("chat service cannot be nil")
	}
	if cfg.Hub == nil {
		return nil, errors.New("hub cannot be nil")
	}
	if cfg.Broadcaster == nil {
		return nil, errors.New("broadcaster cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		identity: cfg.Identity,
		rooms:    cfg.Rooms,
		game:     cfg.Game,
		chat:     cfg.Chat,
		hub:      cfg.Hub,
		bus:      cfg.Broadcaster,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}, nil
}

// ServeHTTP authenticates the ?id=&token= pair and upgrades the
// connection
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	validated, err := h.identity.Validate(r.Context(), &identity.ValidateInput{
		UserID: query.Get("id"),
		Token:  query.Get("token"),
	})
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(h, conn, validated.User.ID)
	h.hub.Join(broadcast.Participant(c.userID).Channel(), c)
	h.logger.Info("user connected", "user_id", c.userID)

	go c.writePump()
	go c.readPump()
}
