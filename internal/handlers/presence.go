package handlers

import (
	"encoding/json"
	"net/http"

	"studyroom-backend/internal/middleware"
	"studyroom-backend/internal/models"
	"studyroom-backend/internal/services"
)

// PresenceHandler serves the kiosk endpoints. The kiosk is a shared
// tablet at the room entrance, so check-in and check-out carry the
// credential in the body instead of a bearer token.
type PresenceHandler struct {
	authService     *services.AuthService
	presenceService *services.PresenceService
}

func NewPresenceHandler(authService *services.AuthService, presenceService *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{authService: authService, presenceService: presenceService}
}

func (h *PresenceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.authService.VerifyCredential(r.Context(), req.StudentNo, req.PIN)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess, err := h.presenceService.CheckIn(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nickname":   user.Nickname,
		"checkin_at": sess.CheckinAt,
	})
}

func (h *PresenceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req models.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.authService.VerifyCredential(r.Context(), req.StudentNo, req.PIN)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess, err := h.presenceService.CheckOut(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nickname":     user.Nickname,
		"checkout_at":  sess.CheckoutAt,
		"duration_sec": sess.DurationSec,
	})
}

// Status reports IN/OUT for the authenticated user.
func (h *PresenceHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.presenceService.Status(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Occupancy is public: the kiosk idle screen shows how many are in.
func (h *PresenceHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	count, err := h.presenceService.Occupancy(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"occupancy": count})
}
