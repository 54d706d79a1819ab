// Package event publishes user activity (favorites and reviews) to a message
// broker. Publishing is best effort: failures are logged and never surface
// to the request that caused them.
package event

import (
	"context"
	"log/slog"
	"time"
)

// Activity event types.
const (
	FavoriteAdded   = "favorite.added"
	FavoriteRemoved = "favorite.removed"
	ReviewUpserted  = "review.upserted"
	ReviewDeleted   = "review.deleted"
)

// Event describes one user action.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	MovieID    string    `json:"movieId"`
	ReviewID   string    `json:"reviewId,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Emit publishes e, stamping OccurredAt when unset. Errors are logged only.
// A nil publisher is a no-op.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "activity event not published",
			slog.String("type", e.Type),
			slog.String("movie_id", e.MovieID),
			slog.Any("error", err),
		)
	}
}

// Nop discards every event. It is used when events are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
