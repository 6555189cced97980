package broadcast

//go:generate mockgen -package=mocks -destination=mocks/mock_broadcaster.go github.com/guesswho-game/guesswho/internal/broadcast Broadcaster

import "context"

// Broadcaster fans an event out to every connection in a group,
// including connections held by other processes when a backplane is
// available
type Broadcaster interface {
	Broadcast(ctx context.Context, group Group, event string, payload interface{}) error
}
