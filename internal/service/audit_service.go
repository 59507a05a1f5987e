package service

import (
	"context"
	"log/slog"

	"talentbridge/internal/event"
)

// AuditLogger consumes domain events from the bus and records them through
// slog. It runs until the context is cancelled.
type AuditLogger struct {
	bus event.Bus
}

func NewAuditLogger(bus event.Bus) *AuditLogger {
	return &AuditLogger{bus: bus}
}

func (a *AuditLogger) Run(ctx context.Context) {
	events, unsubscribe := a.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			slog.Info("audit", "event", string(e.Type), "event_id", e.ID, "actor_id", e.ActorID)
		}
	}
}
