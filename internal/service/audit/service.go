package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/sse"
	"github.com/workpulse/timecore-backend-go/internal/pkg/validator"
)

// Config holds audit sink configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   audit.Repository
	hub    *sse.Hub
	config Config

	queue  chan audit.Event
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewAuditService creates the async audit sink with background workers. The
// hub is optional; when present every persisted event is also broadcast to
// the event's organization channel.
func NewAuditService(repo audit.Repository, hub *sse.Hub, cfg Config) audit.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan audit.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Audit sink started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the queue, batching writes by size and flush interval.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]audit.Event, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		events := make([]*audit.Event, len(batch))
		for i := range batch {
			e := batch[i]
			events[i] = &e
		}

		if err := s.repo.CreateBatch(ctx, events); err != nil {
			slog.Error("Audit worker failed to batch insert", "worker", id, "error", err)
		} else if s.hub != nil {
			for _, e := range events {
				s.hub.Publish(e.OrganizationID, sse.Event{
					Channel: e.OrganizationID,
					Event:   string(e.Action),
					Data:    e,
				})
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case event := <-s.queue:
			batch = append(batch, event)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued so shutdown loses nothing.
			for {
				select {
				case event := <-s.queue:
					batch = append(batch, event)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Record implements audit.Recorder. Never blocks: when the queue is full the
// event is dropped with a log line rather than stalling a clock or timer
// transition.
func (s *service) Record(event audit.Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case s.queue <- event:
	default:
		slog.Warn("Audit queue full, dropping event",
			"action", event.Action,
			"entity_id", event.EntityID)
	}
}

// Stop flushes pending events, including everything still queued, and stops
// the workers.
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("Audit sink stopped")
}

var validEntityTypes = []string{"attendance", "timesheet"}

// ListByEntity implements audit.Reader.
func (s *service) ListByEntity(ctx context.Context, actor user.Actor, entityType, entityID string, limit int) ([]audit.EventResponse, error) {
	if !actor.IsAdmin() {
		return nil, user.ErrAdminPrivilegeRequired
	}

	var errs validator.ValidationErrors
	if !validator.IsInSlice(entityType, validEntityTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_type",
			Message: "entity_type must be one of: attendance, timesheet",
		})
	}
	if validator.IsEmpty(entityID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_id",
			Message: "entity_id is required",
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	events, err := s.repo.ListByEntity(ctx, actor.OrganizationID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	out := make([]audit.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, audit.EventResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
