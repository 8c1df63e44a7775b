package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/services"
)

type AdminHandler struct {
	adminService    *services.AdminService
	presenceService *services.PresenceService
}

func NewAdminHandler(adminService *services.AdminService, presenceService *services.PresenceService) *AdminHandler {
	return &AdminHandler{adminService: adminService, presenceService: presenceService}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) ResetPIN(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.adminService.ResetPIN(r.Context(), req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "PIN reset"})
}

// ForceCheckout closes one user's open session. Closing an already
// closed user reports affected=false rather than failing, so the
// admin page can be mashed safely.
func (h *AdminHandler) ForceCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"id": "must be a UUID"}, r))
		return
	}

	durationSec, affected, err := h.presenceService.ForceCheckout(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"affected":     affected,
		"duration_sec": durationSec,
	})
}

func (h *AdminHandler) ForceCheckoutAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.presenceService.ForceCheckoutAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"closed": count})
}
