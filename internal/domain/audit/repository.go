package audit

import (
	"context"
)

// Repository persists audit events. Events are append-only; there is no
// update or delete.
type Repository interface {
	CreateBatch(ctx context.Context, events []*Event) error
	ListByEntity(ctx context.Context, organizationID, entityType, entityID string, limit int) ([]*Event, error)
}
