package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one progress transition of a user, e.g. a level-up or a paid
// objectives bonus.
type Event struct {
	UserID uuid.UUID `json:"user_id"`
	Kind   string    `json:"kind"`
	XP     int       `json:"xp,omitempty"`
	Level  int       `json:"level,omitempty"`
	At     time.Time `json:"at"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onMsg func(ev Event)) error
	Close() error
}
