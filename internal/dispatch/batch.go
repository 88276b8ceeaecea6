package dispatch

import (
	"context"
	"log/slog"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// BatchCoordinator fans one event out to every active identity and collects
// a per-identity outcome map. One identity's failure never aborts the rest.
type BatchCoordinator struct {
	store      IdentityStore
	dispatcher *Dispatcher
	stats      statsCounter
	logger     *slog.Logger
}

// statsCounter is the slice of the stats surface the coordinator touches.
type statsCounter interface {
	IncProcessed()
}

// NewBatchCoordinator returns a coordinator running dispatcher per identity.
func NewBatchCoordinator(store IdentityStore, dispatcher *Dispatcher, stats statsCounter, logger *slog.Logger) *BatchCoordinator {
	return &BatchCoordinator{store: store, dispatcher: dispatcher, stats: stats, logger: logger}
}

// ProcessEvent dispatches event for every active identity and returns the
// complete outcome map keyed by identity email. The processed counter is
// incremented exactly once per event regardless of outcomes.
func (c *BatchCoordinator) ProcessEvent(ctx context.Context, event *model.JobEvent) map[string]bool {
	c.stats.IncProcessed()
	results := make(map[string]bool)

	identities, err := c.store.ActiveIdentities(ctx)
	if err != nil {
		c.logger.Error("fetching active identities failed",
			slog.String("error", err.Error()))
		return results
	}

	c.logger.Info("processing event",
		slog.Int("identities", len(identities)),
		slog.String("position", event.Position))

	for _, identity := range identities {
		results[identity.Email] = c.safeDispatch(ctx, identity, event)
	}
	return results
}

// safeDispatch shields the batch from a panicking dispatch; a panic counts
// as a failed outcome for that identity only.
func (c *BatchCoordinator) safeDispatch(ctx context.Context, identity model.SenderIdentity, event *model.JobEvent) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("dispatch panicked",
				slog.String("sender", identity.Email),
				slog.Any("panic", r))
			ok = false
		}
	}()
	return c.dispatcher.DispatchFor(ctx, identity.ID, event)
}
