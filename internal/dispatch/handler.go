package dispatch

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// eventTypeJobVacancy is the only envelope type this system consumes.
const eventTypeJobVacancy = "job_vacancy"

// Coordinator processes one gated event across all identities.
type Coordinator interface {
	ProcessEvent(ctx context.Context, event *model.JobEvent) map[string]bool
}

// EventHandler applies the event-shape gate to decoded envelopes and hands
// passing events to the coordinator. It is the handler registered with the
// subscriber.
type EventHandler struct {
	coordinator Coordinator
	logger      *slog.Logger
}

// NewEventHandler returns an EventHandler in front of coordinator.
func NewEventHandler(coordinator Coordinator, logger *slog.Logger) *EventHandler {
	return &EventHandler{coordinator: coordinator, logger: logger}
}

// Handle gates one decoded envelope and runs the batch. Envelopes failing
// the gate are skipped silently apart from a debug line; the coordinator is
// never invoked for them.
func (h *EventHandler) Handle(ctx context.Context, env *model.EventEnvelope) {
	h.logger.Info("received message",
		slog.String("type", env.Type),
		slog.String("source", env.Source),
		slog.String("timestamp", env.Timestamp))

	if env.Type != eventTypeJobVacancy {
		h.logger.Debug("ignoring non job_vacancy message", slog.String("type", env.Type))
		return
	}
	event := env.ExtractedData
	if event == nil {
		h.logger.Debug("message has no extracted_data")
		return
	}
	if !event.IsJobVacancy {
		h.logger.Debug("not a job vacancy, skipping")
		return
	}
	if len(event.Email) == 0 {
		h.logger.Debug("no email targets", slog.String("position", event.Position))
		return
	}

	results := h.coordinator.ProcessEvent(ctx, event)

	failed := make([]string, 0)
	for sender, ok := range results {
		if !ok {
			failed = append(failed, sender)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		h.logger.Warn("some dispatches failed",
			slog.Int("failed", len(failed)),
			slog.Int("total", len(results)),
			slog.Any("senders", failed))
	}
}
