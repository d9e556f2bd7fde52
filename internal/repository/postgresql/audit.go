package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

// CreateBatch implements audit.Repository. Events arrive pre-batched from the
// recorder workers, so a single multi-row insert per flush keeps write
// amplification low.
func (r *auditRepository) CreateBatch(ctx context.Context, events []*audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := "INSERT INTO audit_events (organization_id, actor_id, action, entity_type, entity_id, metadata, created_at) VALUES "
	args := make([]interface{}, 0, len(events)*7)
	argIdx := 1

	for i, ev := range events {
		metadata, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}

		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIdx, argIdx+1, argIdx+2, argIdx+3, argIdx+4, argIdx+5, argIdx+6)
		args = append(args, ev.OrganizationID, ev.ActorID, string(ev.Action), ev.EntityType, ev.EntityID, metadata, ev.CreatedAt)
		argIdx += 7
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert audit events: %w", err)
	}

	return nil
}

// ListByEntity implements audit.Repository.
func (r *auditRepository) ListByEntity(ctx context.Context, organizationID, entityType, entityID string, limit int) ([]*audit.Event, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, organization_id, actor_id, action, entity_type, entity_id, metadata, created_at
		FROM audit_events
		WHERE organization_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := q.Query(ctx, query, organizationID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*audit.Event
	for rows.Next() {
		var ev audit.Event
		var action string
		var metadata []byte
		if err := rows.Scan(&ev.ID, &ev.OrganizationID, &ev.ActorID, &action, &ev.EntityType, &ev.EntityID, &metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.Action = audit.Action(action)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, &ev)
	}

	return events, nil
}
