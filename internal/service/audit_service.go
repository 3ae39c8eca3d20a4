package service

import (
	"context"
	"log/slog"
	"time"

	"photovault/internal/event"
	"photovault/internal/model"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	ListByActor(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error)
}

// AuditService persists lifecycle events into the audit trail. It
// consumes the event bus so the vault never waits on audit writes.
type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Consume drains bus events until the context is canceled. Intended to
// run as a single background goroutine.
func (s *AuditService) Consume(ctx context.Context, bus event.Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.record(ctx, e)
		}
	}
}

func (s *AuditService) record(ctx context.Context, e event.Event) {
	payload, ok := e.Payload.(event.FilePayload)
	if !ok {
		return
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		occurredAt = time.Now().UTC()
	}

	entry := model.AuditEntry{
		Action:     string(e.Type),
		OccurredAt: occurredAt,
		Actor:      model.AuditActor{UserID: e.ActorID, Email: payload.ActorEmail},
		FileID:     payload.FileID,
		StorageKey: payload.StorageKey,
		Error:      payload.Err,
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Warn("audit write failed", "action", entry.Action, "file_id", entry.FileID, "error", err)
	}
}

func (s *AuditService) History(ctx context.Context, caller model.Caller, limit int) ([]model.AuditEntry, error) {
	if caller.ID == "" {
		return nil, model.ErrUnauthenticated
	}
	return s.store.ListByActor(ctx, caller.ID, limit)
}
