package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/workpulse/timecore-backend-go/internal/domain/organization"
	"github.com/workpulse/timecore-backend-go/internal/handler/http/response"
)

type OrganizationHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type organizationHandlerImpl struct {
	organizationService organization.OrganizationService
}

func NewOrganizationHandler(organizationService organization.OrganizationService) OrganizationHandler {
	return &organizationHandlerImpl{organizationService: organizationService}
}

// Get implements OrganizationHandler.
func (h *organizationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.organizationService.Get(r.Context(), actor)
	if err != nil {
		slog.Error("Get organization service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateSettings implements OrganizationHandler.
func (h *organizationHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req organization.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.organizationService.UpdateSettings(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpdateSettings service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Organization settings updated", "organization_id", actor.OrganizationID, "updated_by", actor.ID)
	response.SuccessWithMessage(w, "Settings updated successfully", result)
}
