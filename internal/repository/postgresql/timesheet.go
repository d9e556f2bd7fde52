package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepository{db: db}
}

const timesheetColumns = `
	t.id, t.owner_id, t.organization_id, t.collaborator_ids, t.date, t.task_label,
	t.status, t.is_running, t.start_time, t.total_milliseconds,
	t.created_at, t.updated_at`

func scanTimesheet(row pgx.Row) (timesheet.TaskTimerRecord, error) {
	var rec timesheet.TaskTimerRecord
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.OrganizationID, &rec.CollaboratorIDs, &rec.Date, &rec.TaskLabel,
		&rec.Status, &rec.IsRunning, &rec.StartTime, &rec.TotalMilliseconds,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements timesheet.TimesheetRepository.
func (t *timesheetRepository) Create(ctx context.Context, rec timesheet.TaskTimerRecord) (timesheet.TaskTimerRecord, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		INSERT INTO timesheets (
			owner_id, organization_id, collaborator_ids, date, task_label,
			status, is_running, start_time, total_milliseconds
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.OwnerID,
		rec.OrganizationID,
		rec.CollaboratorIDs,
		rec.Date,
		rec.TaskLabel,
		rec.Status,
		rec.IsRunning,
		rec.StartTime,
		rec.TotalMilliseconds,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return timesheet.TaskTimerRecord{}, fmt.Errorf("failed to create timesheet: %w", err)
	}

	return rec, nil
}

// GetByID implements timesheet.TimesheetRepository.
func (t *timesheetRepository) GetByID(ctx context.Context, id string, organizationID string) (timesheet.TaskTimerRecord, error) {
	q := GetQuerier(ctx, t.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM timesheets t
		WHERE t.id = $1 AND t.organization_id = $2
	`, timesheetColumns)

	rec, err := scanTimesheet(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.TaskTimerRecord{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.TaskTimerRecord{}, fmt.Errorf("failed to get timesheet by ID: %w", err)
	}

	events, err := t.listEvents(ctx, q, rec.ID)
	if err != nil {
		return timesheet.TaskTimerRecord{}, err
	}
	rec.Events = events

	return rec, nil
}

func (t *timesheetRepository) listEvents(ctx context.Context, q database.Querier, recordID string) ([]timesheet.TimerEvent, error) {
	query := `
		SELECT action, note, at
		FROM timesheet_events
		WHERE timesheet_id = $1
		ORDER BY at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheet events: %w", err)
	}
	defer rows.Close()

	var events []timesheet.TimerEvent
	for rows.Next() {
		var ev timesheet.TimerEvent
		var action string
		if err := rows.Scan(&action, &ev.Note, &ev.At); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet event: %w", err)
		}
		ev.Action = timesheet.TimerAction(action)
		events = append(events, ev)
	}

	return events, nil
}

// Update implements timesheet.TimesheetRepository.
func (t *timesheetRepository) Update(ctx context.Context, rec timesheet.TaskTimerRecord) error {
	q := GetQuerier(ctx, t.db)

	query := `
		UPDATE timesheets SET
			collaborator_ids = $1, status = $2, is_running = $3,
			start_time = $4, total_milliseconds = $5, updated_at = NOW()
		WHERE id = $6 AND organization_id = $7
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		rec.CollaboratorIDs, rec.Status, rec.IsRunning,
		rec.StartTime, rec.TotalMilliseconds,
		rec.ID, rec.OrganizationID,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.ErrTimesheetNotFound
		}
		return fmt.Errorf("failed to update timesheet: %w", err)
	}

	return nil
}

// AppendEvent implements timesheet.TimesheetRepository.
func (t *timesheetRepository) AppendEvent(ctx context.Context, recordID string, event timesheet.TimerEvent) error {
	q := GetQuerier(ctx, t.db)

	query := `
		INSERT INTO timesheet_events (timesheet_id, action, note, at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := q.Exec(ctx, query, recordID, string(event.Action), event.Note, event.At); err != nil {
		return fmt.Errorf("failed to append timesheet event: %w", err)
	}

	return nil
}

// ListRunningByActor implements timesheet.TimesheetRepository. Membership is
// owner or collaborator; the invariant spans both.
func (t *timesheetRepository) ListRunningByActor(ctx context.Context, actorID string) ([]timesheet.TaskTimerRecord, error) {
	q := GetQuerier(ctx, t.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM timesheets t
		WHERE t.is_running = TRUE
		  AND (t.owner_id = $1 OR $1 = ANY(t.collaborator_ids))
		FOR UPDATE
	`, timesheetColumns)

	rows, err := q.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query running timesheets: %w", err)
	}
	defer rows.Close()

	var records []timesheet.TaskTimerRecord
	for rows.Next() {
		rec, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan running timesheet: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListByActorAndDateRange implements timesheet.TimesheetRepository.
func (t *timesheetRepository) ListByActorAndDateRange(ctx context.Context, actorID string, from, to string) ([]timesheet.TaskTimerRecord, error) {
	q := GetQuerier(ctx, t.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM timesheets t
		WHERE (t.owner_id = $1 OR $1 = ANY(t.collaborator_ids))
		  AND t.date >= $2 AND t.date <= $3
		ORDER BY t.date ASC
	`, timesheetColumns)

	rows, err := q.Query(ctx, query, actorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets by date range: %w", err)
	}
	defer rows.Close()

	var records []timesheet.TaskTimerRecord
	for rows.Next() {
		rec, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListByActor implements timesheet.TimesheetRepository.
func (t *timesheetRepository) ListByActor(ctx context.Context, actorID string, filter timesheet.ListFilter, organizationID string) ([]timesheet.TaskTimerRecord, int64, error) {
	q := GetQuerier(ctx, t.db)

	baseWhere := "(t.owner_id = $1 OR $1 = ANY(t.collaborator_ids)) AND t.organization_id = $2"
	args := []interface{}{actorID, organizationID}
	argIdx := 3

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND t.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM timesheets t WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timesheets: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM timesheets t
		WHERE %s
		ORDER BY t.date %s
		LIMIT $%d OFFSET $%d
	`, timesheetColumns, baseWhere, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	var records []timesheet.TaskTimerRecord
	for rows.Next() {
		rec, err := scanTimesheet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// ListRunningLongerThan implements timesheet.TimesheetRepository.
func (t *timesheetRepository) ListRunningLongerThan(ctx context.Context, cutoff int64) ([]timesheet.TaskTimerRecord, error) {
	q := GetQuerier(ctx, t.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM timesheets t
		WHERE t.is_running = TRUE AND t.start_time <= $1
	`, timesheetColumns)

	rows, err := q.Query(ctx, query, time.Unix(cutoff, 0).UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query stale running timesheets: %w", err)
	}
	defer rows.Close()

	var records []timesheet.TaskTimerRecord
	for rows.Next() {
		rec, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale timesheet: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Delete implements timesheet.TimesheetRepository.
func (t *timesheetRepository) Delete(ctx context.Context, id string, organizationID string) error {
	q := GetQuerier(ctx, t.db)

	if _, err := q.Exec(ctx, `DELETE FROM timesheet_events WHERE timesheet_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete timesheet events: %w", err)
	}

	commandTag, err := q.Exec(ctx, `DELETE FROM timesheets WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}

	return nil
}
