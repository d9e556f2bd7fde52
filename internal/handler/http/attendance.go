package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/attendance"
	"github.com/workpulse/timecore-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Overview(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Multipart: "data" carries the JSON payload, "photo" the optional proof
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("ClockIn multipart parse error", "error", err)
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}

	var req attendance.ClockInRequest
	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("ClockIn decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil && err != http.ErrMissingFile {
		slog.Error("ClockIn photo error", "error", err)
		response.BadRequest(w, "Invalid photo upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	}

	req.IP = clientIP(r)
	req.UserAgent = r.UserAgent()

	result, err := h.attendanceService.ClockIn(r.Context(), actor, req)
	if err != nil {
		slog.Error("ClockIn service error", "error", err, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Actor clocked in", "actor_id", actor.ID, "date", result.Date, "status", result.Status)
	response.Created(w, "Clocked in successfully", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("ClockOut multipart parse error", "error", err)
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}

	var req attendance.ClockOutRequest
	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("ClockOut decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil && err != http.ErrMissingFile {
		slog.Error("ClockOut photo error", "error", err)
		response.BadRequest(w, "Invalid photo upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	}

	req.IP = clientIP(r)
	req.UserAgent = r.UserAgent()

	result, err := h.attendanceService.ClockOut(r.Context(), actor, req)
	if err != nil {
		slog.Error("ClockOut service error", "error", err, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Actor clocked out", "actor_id", actor.ID, "date", result.Date)
	response.SuccessWithMessage(w, "Clocked out successfully", result)
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	result, err := h.attendanceService.Approve(r.Context(), actor, recordID)
	if err != nil {
		slog.Error("Approve service error", "error", err, "attendance_id", recordID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Attendance approved", "attendance_id", recordID, "approved_by", actor.ID)
	response.SuccessWithMessage(w, "Attendance approved", result)
}

// Overview implements AttendanceHandler.
func (h *attendanceHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.attendanceService.GetOverview(r.Context(), actor, date)
	if err != nil {
		slog.Error("Overview service error", "error", err, "date", date)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := parseAttendanceFilter(r)

	result, err := h.attendanceService.GetMyAttendance(r.Context(), actor, filter)
	if err != nil {
		slog.Error("GetMyAttendance service error", "error", err, "actor_id", actor.ID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func parseAttendanceFilter(r *http.Request) attendance.MyAttendanceFilter {
	q := r.URL.Query()
	filter := attendance.MyAttendanceFilter{
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
	return filter
}
