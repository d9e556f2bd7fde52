package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/timesheet"
	"github.com/workpulse/timecore-backend-go/internal/handler/http/response"
)

type TimesheetHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	Stop(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	GetMyTimesheets(w http.ResponseWriter, r *http.Request)
	GetDailyTotal(w http.ResponseWriter, r *http.Request)
	GetMonthlyTotal(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService}
}

// Create implements TimesheetHandler.
func (h *timesheetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req timesheet.CreateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create timesheet decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.timesheetService.Create(r.Context(), actor, req)
	if err != nil {
		slog.Error("Create timesheet service error", "error", err, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Timesheet created", "timesheet_id", result.ID, "actor_id", actor.ID)
	response.Created(w, "Timesheet created successfully", result)
}

// Start implements TimesheetHandler.
func (h *timesheetHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	result, err := h.timesheetService.Start(r.Context(), actor, recordID)
	if err != nil {
		slog.Error("Start timer service error", "error", err, "timesheet_id", recordID, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Timer started", "timesheet_id", recordID, "actor_id", actor.ID)
	response.SuccessWithMessage(w, "Timer started", result)
}

// Stop implements TimesheetHandler.
func (h *timesheetHandlerImpl) Stop(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	result, err := h.timesheetService.Stop(r.Context(), actor, recordID)
	if err != nil {
		slog.Error("Stop timer service error", "error", err, "timesheet_id", recordID, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Timer stopped", "timesheet_id", recordID, "actor_id", actor.ID)
	response.SuccessWithMessage(w, "Timer stopped", result)
}

// Submit implements TimesheetHandler.
func (h *timesheetHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	result, err := h.timesheetService.Submit(r.Context(), actor, recordID)
	if err != nil {
		slog.Error("Submit timesheet service error", "error", err, "timesheet_id", recordID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet submitted", result)
}

// Review implements TimesheetHandler.
func (h *timesheetHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	result, err := h.timesheetService.Review(r.Context(), actor, recordID)
	if err != nil {
		slog.Error("Review timesheet service error", "error", err, "timesheet_id", recordID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet reviewed", result)
}

// Delete implements TimesheetHandler.
func (h *timesheetHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	if err := h.timesheetService.Delete(r.Context(), actor, recordID); err != nil {
		slog.Error("Delete timesheet service error", "error", err, "timesheet_id", recordID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Timesheet deleted", "timesheet_id", recordID, "actor_id", actor.ID)
	response.SuccessWithMessage(w, "Timesheet deleted", nil)
}

// GetMyTimesheets implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetMyTimesheets(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := r.URL.Query()
	filter := timesheet.ListFilter{
		Page:      parseIntQuery(q.Get("page")),
		Limit:     parseIntQuery(q.Get("limit")),
		SortOrder: q.Get("sort_order"),
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}

	result, err := h.timesheetService.GetMyTimesheets(r.Context(), actor, filter)
	if err != nil {
		slog.Error("GetMyTimesheets service error", "error", err, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Timesheets, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// GetDailyTotal implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetDailyTotal(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required", nil)
		return
	}

	result, err := h.timesheetService.GetDailyTotal(r.Context(), actor, date)
	if err != nil {
		slog.Error("GetDailyTotal service error", "error", err, "date", date)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyTotal implements TimesheetHandler.
func (h *timesheetHandlerImpl) GetMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		response.BadRequest(w, "month query parameter is required", nil)
		return
	}

	result, err := h.timesheetService.GetMonthlyTotal(r.Context(), actor, month)
	if err != nil {
		slog.Error("GetMonthlyTotal service error", "error", err, "month", month)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
