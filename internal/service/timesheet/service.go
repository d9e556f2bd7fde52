package timesheet

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
	"github.com/workpulse/timecore-backend-go/internal/pkg/keylock"
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

type timesheetService struct {
	repo      timesheet.TimesheetRepository
	txManager database.TxManager
	recorder  audit.Recorder
	locks     *keylock.KeyedMutex

	// now is injectable for tests; production wiring passes time.Now.
	now func() time.Time
}

func NewTimesheetService(
	repo timesheet.TimesheetRepository,
	txManager database.TxManager,
	recorder audit.Recorder,
	now func() time.Time,
) timesheet.TimesheetService {
	if now == nil {
		now = time.Now
	}
	return &timesheetService{
		repo:      repo,
		txManager: txManager,
		recorder:  recorder,
		locks:     keylock.NewKeyedMutex(),
		now:       now,
	}
}

// Create implements timesheet.TimesheetService.
func (s *timesheetService) Create(ctx context.Context, actor user.Actor, req timesheet.CreateTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	record := timesheet.TaskTimerRecord{
		OwnerID:         actor.ID,
		OrganizationID:  actor.OrganizationID,
		CollaboratorIDs: req.CollaboratorIDs,
		Date:            req.Date,
		TaskLabel:       req.TaskLabel,
		Status:          req.Status,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	event := timesheet.TimerEvent{
		Action: timesheet.ActionCreated,
		At:     s.now(),
	}
	if err := s.repo.AppendEvent(ctx, created.ID, event); err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	created.Events = append(created.Events, event)

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimesheetCreated,
		EntityType:     "timesheet",
		EntityID:       created.ID,
		Metadata: map[string]interface{}{
			"date":       created.Date,
			"task_label": created.TaskLabel,
		},
	})

	return toTimesheetResponse(created), nil
}

// Start implements timesheet.TimesheetService. The per-actor lock plus the
// surrounding transaction make stop-others-then-start atomic: either every
// auto-stop and the start commit together or none do.
func (s *timesheetService) Start(ctx context.Context, actor user.Actor, recordID string) (timesheet.TimesheetResponse, error) {
	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	var target timesheet.TaskTimerRecord
	var autoStopped []string

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.repo.GetByID(ctx, recordID, actor.OrganizationID)
		if err != nil {
			return err
		}

		if !target.IsMember(actor.ID) {
			return timesheet.ErrNotOwnerOrCollaborator
		}
		if target.IsRunning {
			return timesheet.ErrTimerAlreadyRunning
		}

		now := s.now()

		running, err := s.repo.ListRunningByActor(ctx, actor.ID)
		if err != nil {
			return err
		}
		for _, rec := range running {
			if rec.ID == target.ID {
				continue
			}
			if err := s.freeze(ctx, &rec, now, timesheet.TimerEvent{
				Action: timesheet.ActionAutoStopped,
				Note:   fmt.Sprintf("stopped automatically when actor %s started timer %s", actor.ID, target.ID),
				At:     now,
			}); err != nil {
				return err
			}
			autoStopped = append(autoStopped, rec.ID)
		}

		target.IsRunning = true
		target.StartTime = &now
		if target.Status == timesheet.StatusDraft || target.Status == timesheet.StatusPending {
			target.Status = timesheet.StatusInProgress
		}
		if err := s.repo.Update(ctx, target); err != nil {
			return err
		}

		event := timesheet.TimerEvent{Action: timesheet.ActionStarted, At: now}
		if err := s.repo.AppendEvent(ctx, target.ID, event); err != nil {
			return err
		}
		target.Events = append(target.Events, event)

		return nil
	})
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	// Audit only after the transaction committed, so the log never claims a
	// transition that rolled back.
	for _, id := range autoStopped {
		s.recorder.Record(audit.Event{
			OrganizationID: actor.OrganizationID,
			ActorID:        actor.ID,
			Action:         audit.ActionTimerAutoStopped,
			EntityType:     "timesheet",
			EntityID:       id,
			Metadata:       map[string]interface{}{"started_timesheet_id": target.ID},
		})
	}
	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimerStarted,
		EntityType:     "timesheet",
		EntityID:       target.ID,
	})

	return toTimesheetResponse(target), nil
}

// Stop implements timesheet.TimesheetService.
func (s *timesheetService) Stop(ctx context.Context, actor user.Actor, recordID string) (timesheet.TimesheetResponse, error) {
	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	var target timesheet.TaskTimerRecord

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.repo.GetByID(ctx, recordID, actor.OrganizationID)
		if err != nil {
			return err
		}

		if !target.IsMember(actor.ID) {
			return timesheet.ErrNotOwnerOrCollaborator
		}
		if !target.IsRunning {
			return timesheet.ErrTimerNotRunning
		}

		now := s.now()
		event := timesheet.TimerEvent{Action: timesheet.ActionStopped, At: now}
		if err := s.freeze(ctx, &target, now, event); err != nil {
			return err
		}
		target.Events = append(target.Events, event)

		return nil
	})
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimerStopped,
		EntityType:     "timesheet",
		EntityID:       target.ID,
		Metadata:       map[string]interface{}{"total_milliseconds": target.TotalMilliseconds},
	})

	return toTimesheetResponse(target), nil
}

// freeze accrues elapsed time into the record, clears the running state and
// appends the given transition event. Caller persists nothing else.
func (s *timesheetService) freeze(ctx context.Context, rec *timesheet.TaskTimerRecord, now time.Time, event timesheet.TimerEvent) error {
	if rec.StartTime != nil {
		elapsed := now.Sub(*rec.StartTime).Milliseconds()
		if elapsed > 0 {
			rec.TotalMilliseconds += elapsed
		}
	}
	rec.IsRunning = false
	rec.StartTime = nil

	if err := s.repo.Update(ctx, *rec); err != nil {
		return err
	}
	return s.repo.AppendEvent(ctx, rec.ID, event)
}

// Submit implements timesheet.TimesheetService.
func (s *timesheetService) Submit(ctx context.Context, actor user.Actor, recordID string) (timesheet.TimesheetResponse, error) {
	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	record, err := s.repo.GetByID(ctx, recordID, actor.OrganizationID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	if record.OwnerID != actor.ID {
		return timesheet.TimesheetResponse{}, timesheet.ErrNotOwner
	}
	if record.IsRunning {
		return timesheet.TimesheetResponse{}, timesheet.ErrTimerRunning
	}
	switch record.Status {
	case timesheet.StatusDraft, timesheet.StatusPending, timesheet.StatusInProgress:
	default:
		return timesheet.TimesheetResponse{}, timesheet.ErrNotSubmittable
	}

	now := s.now()
	record.Status = timesheet.StatusSubmitted
	if err := s.repo.Update(ctx, record); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	event := timesheet.TimerEvent{Action: timesheet.ActionSubmitted, At: now}
	if err := s.repo.AppendEvent(ctx, record.ID, event); err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	record.Events = append(record.Events, event)

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimesheetSubmitted,
		EntityType:     "timesheet",
		EntityID:       record.ID,
	})

	return toTimesheetResponse(record), nil
}

// Review implements timesheet.TimesheetService.
func (s *timesheetService) Review(ctx context.Context, actor user.Actor, recordID string) (timesheet.TimesheetResponse, error) {
	if !actor.IsAdmin() {
		return timesheet.TimesheetResponse{}, user.ErrAdminPrivilegeRequired
	}

	record, err := s.repo.GetByID(ctx, recordID, actor.OrganizationID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	if record.Status != timesheet.StatusSubmitted {
		return timesheet.TimesheetResponse{}, timesheet.ErrNotReviewable
	}

	now := s.now()
	record.Status = timesheet.StatusReviewed
	if err := s.repo.Update(ctx, record); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	event := timesheet.TimerEvent{Action: timesheet.ActionReviewed, At: now}
	if err := s.repo.AppendEvent(ctx, record.ID, event); err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	record.Events = append(record.Events, event)

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimesheetReviewed,
		EntityType:     "timesheet",
		EntityID:       record.ID,
	})

	return toTimesheetResponse(record), nil
}

// Delete implements timesheet.TimesheetService.
func (s *timesheetService) Delete(ctx context.Context, actor user.Actor, recordID string) error {
	s.locks.Lock(actor.ID)
	defer s.locks.Unlock(actor.ID)

	record, err := s.repo.GetByID(ctx, recordID, actor.OrganizationID)
	if err != nil {
		return err
	}

	if record.OwnerID != actor.ID {
		return timesheet.ErrNotOwner
	}
	if record.Status != timesheet.StatusDraft {
		return timesheet.ErrNotDraft
	}

	if err := s.repo.Delete(ctx, record.ID, actor.OrganizationID); err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionTimesheetDeleted,
		EntityType:     "timesheet",
		EntityID:       record.ID,
		Metadata: map[string]interface{}{
			"date":       record.Date,
			"task_label": record.TaskLabel,
		},
	})

	return nil
}

// GetMyTimesheets implements timesheet.TimesheetService.
func (s *timesheetService) GetMyTimesheets(ctx context.Context, actor user.Actor, filter timesheet.ListFilter) (timesheet.ListTimesheetResponse, error) {
	if err := filter.Validate(); err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}

	records, total, err := s.repo.ListByActor(ctx, actor.ID, filter, actor.OrganizationID)
	if err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}

	resp := timesheet.ListTimesheetResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Timesheets: make([]timesheet.TimesheetResponse, 0, len(records)),
	}
	for _, record := range records {
		resp.Timesheets = append(resp.Timesheets, toTimesheetResponse(record))
	}

	return resp, nil
}

// GetDailyTotal implements timesheet.TimesheetService.
func (s *timesheetService) GetDailyTotal(ctx context.Context, actor user.Actor, date string) (timesheet.TotalResponse, error) {
	if _, valid := validator.IsValidDate(date); !valid {
		return timesheet.TotalResponse{}, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		}
	}

	records, err := s.repo.ListByActorAndDateRange(ctx, actor.ID, date, date)
	if err != nil {
		return timesheet.TotalResponse{}, err
	}

	return timesheet.TotalResponse{Milliseconds: s.sumWithLive(records)}, nil
}

// GetMonthlyTotal implements timesheet.TimesheetService.
func (s *timesheetService) GetMonthlyTotal(ctx context.Context, actor user.Actor, yearMonth string) (timesheet.TotalResponse, error) {
	month, valid := validator.IsValidMonth(yearMonth)
	if !valid {
		return timesheet.TotalResponse{}, validator.ValidationErrors{
			{Field: "month", Message: "month must be in YYYY-MM format"},
		}
	}

	from := month.Format("2006-01-02")
	to := month.AddDate(0, 1, -1).Format("2006-01-02")

	records, err := s.repo.ListByActorAndDateRange(ctx, actor.ID, from, to)
	if err != nil {
		return timesheet.TotalResponse{}, err
	}

	return timesheet.TotalResponse{Milliseconds: s.sumWithLive(records)}, nil
}

// sumWithLive adds committed totals plus the in-flight elapsed time of any
// running timer. The running delta is computed at read time and not
// persisted.
func (s *timesheetService) sumWithLive(records []timesheet.TaskTimerRecord) int64 {
	now := s.now()
	var total int64
	for _, rec := range records {
		total += rec.TotalMilliseconds
		if rec.IsRunning && rec.StartTime != nil {
			if elapsed := now.Sub(*rec.StartTime).Milliseconds(); elapsed > 0 {
				total += elapsed
			}
		}
	}
	return total
}

// ========================================
// MAPPERS
// ========================================

func toTimesheetResponse(record timesheet.TaskTimerRecord) timesheet.TimesheetResponse {
	resp := timesheet.TimesheetResponse{
		ID:                record.ID,
		OwnerID:           record.OwnerID,
		CollaboratorIDs:   record.CollaboratorIDs,
		Date:              record.Date,
		TaskLabel:         record.TaskLabel,
		Status:            record.Status,
		IsRunning:         record.IsRunning,
		TotalMilliseconds: record.TotalMilliseconds,
		CreatedAt:         record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         record.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if record.StartTime != nil {
		startTime := record.StartTime.UTC().Format(time.RFC3339)
		resp.StartTime = &startTime
	}
	for _, ev := range record.Events {
		resp.Events = append(resp.Events, timesheet.TimerEventResponse{
			Action: string(ev.Action),
			Note:   ev.Note,
			At:     ev.At.UTC().Format(time.RFC3339),
		})
	}
	return resp
}
