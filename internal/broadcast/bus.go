package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Frame is the wire form of a broadcast event
type Frame struct {
	// Event is the broadcast event name
	Event string `json:"event"`

	// Data is the event payload
	Data interface{} `json:"data"`
}

// BusConfig holds configuration for the broadcast bus
type BusConfig struct {
	// Hub receives local deliveries
	Hub *Hub

	// RedisClient is the pub/sub backplane. Nil disables cross-process
	// delivery; broadcasts then reach local connections only.
	RedisClient *redis.Client

	// Logger for delivery failures
	Logger *slog.Logger
}

// Bus implements Broadcaster on top of the local hub and an optional
// Redis pub/sub backplane. When the backplane publishes successfully the
// local hub is fed by the subscription loop, keeping one delivery path;
// when it is unavailable the bus degrades to local-only delivery.
type Bus struct {
	hub    *Hub
	client *redis.Client
	logger *slog.Logger
}

// NewBus creates a broadcast bus
func NewBus(cfg *BusConfig) (*Bus, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Hub == nil {
		return nil, errors.New("hub cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		hub:    cfg.Hub,
		client: cfg.RedisClient,
		logger: logger,
	}, nil
}

// Broadcast marshals the event and sends it to the group's channel
func (b *Bus) Broadcast(ctx context.Context, group Group, event string, payload interface{}) error {
	frame, err := json.Marshal(&Frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast frame: %w", err)
	}

	channel := group.Channel()

	if b.client == nil {
		b.hub.Deliver(channel, frame)
		return nil
	}

	if err := b.client.Publish(ctx, channel, frame).Err(); err != nil {
		// Backplane down: deliver to local connections and keep going
		b.logger.Warn("backplane publish failed, delivering locally", "channel", channel, "error", err)
		b.hub.Deliver(channel, frame)
	}

	return nil
}

// Run subscribes to the backplane pattern and forwards every published
// frame into the local hub. Returns when the context is done. A bus
// without a backplane client returns immediately.
func (b *Bus) Run(ctx context.Context) error {
	if b.client == nil {
		b.logger.Info("no backplane configured, broadcasts are single-process")
		return nil
	}

	sub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("backplane subscription closed")
			}
			b.hub.Deliver(msg.Channel, []byte(msg.Payload))
		}
	}
}
