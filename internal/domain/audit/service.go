package audit

import (
	"context"

	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

// Recorder accepts audit events from the core. Fire-and-forget: the caller
// never blocks on persistence and never sees a sink failure.
type Recorder interface {
	Record(event Event)
	Stop()
}

// Reader serves the persisted audit trail of one entity. Admin only.
type Reader interface {
	ListByEntity(ctx context.Context, actor user.Actor, entityType, entityID string, limit int) ([]EventResponse, error)
}

// Service is the full audit sink surface: the write side used by the core
// and the read side used by the admin trail endpoint.
type Service interface {
	Recorder
	Reader
}
