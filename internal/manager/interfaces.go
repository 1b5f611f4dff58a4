package manager

import (
	"context"

	"github.com/pauljones0/rental-board/internal/feed"
	"github.com/pauljones0/rental-board/internal/models"
)

// FeedSource re-reads the listings feed.
type FeedSource interface {
	Refresh(ctx context.Context) (*feed.Snapshot, error)
}

// ActionSender abstracts the remote action endpoint.
type ActionSender interface {
	Dispatch(ctx context.Context, base, listingID string, action models.Status) error
	Busy(listingID string, action models.Status) bool
}

// TransitionLog abstracts the storage layer for dispatch attempts.
type TransitionLog interface {
	RecordTransition(ctx context.Context, t models.Transition) error
	RecentTransitions(ctx context.Context, email string, limit int) ([]models.Transition, error)
	TrimOldTransitions(ctx context.Context, maxTransitions int) error
}

// TransitionNotifier abstracts the notification layer.
type TransitionNotifier interface {
	Send(ctx context.Context, t models.Transition) (string, error)
}
