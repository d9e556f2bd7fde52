package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/audit"
	"github.com/workpulse/timecore-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	ListByEntity(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService audit.Reader
}

func NewAuditHandler(auditService audit.Reader) AuditHandler {
	return &auditHandlerImpl{auditService: auditService}
}

// ListByEntity implements AuditHandler. Serves the audit trail of one
// attendance or timesheet record, newest first.
func (h *auditHandlerImpl) ListByEntity(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	limit := parseIntQuery(r.URL.Query().Get("limit"))

	result, err := h.auditService.ListByEntity(r.Context(), actor, entityType, entityID, limit)
	if err != nil {
		slog.Error("ListByEntity audit service error", "error", err, "entity_type", entityType, "entity_id", entityID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
