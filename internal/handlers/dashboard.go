package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"studyroom-backend/internal/middleware"
	"studyroom-backend/internal/services"
)

type DashboardHandler struct {
	userService     *services.UserService
	statsService    *services.StatsService
	presenceService *services.PresenceService
}

func NewDashboardHandler(userService *services.UserService, statsService *services.StatsService, presenceService *services.PresenceService) *DashboardHandler {
	return &DashboardHandler{
		userService:     userService,
		statsService:    statsService,
		presenceService: presenceService,
	}
}

// Me returns the whole personal dashboard in one payload: profile,
// presence, per-range totals and ranks, streak, best, goal progress.
func (h *DashboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status, err := h.presenceService.Status(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	totals, err := h.statsService.Totals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	ranks, err := h.statsService.Ranks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	dash, err := h.statsService.Dashboard(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":              user,
		"presence":          status,
		"totals":            totals,
		"ranks":             ranks,
		"streak_days":       dash.StreakDays,
		"personal_best_sec": dash.PersonalBestSec,
		"weekly_goal":       dash.WeeklyGoal,
	})
}

// Daily returns the recent per-day trend with ranks, plus the
// cumulative curve for the chart.
func (h *DashboardHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	windowDays := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"days": "must be between 1 and 90"}, r))
			return
		}
		windowDays = n
	}

	series, cumulative, err := h.statsService.Daily(r.Context(), userID, windowDays)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"daily":      series,
		"cumulative": cumulative,
	})
}

func (h *DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.statsService.History(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": items})
}

func (h *DashboardHandler) SetWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		WeeklyGoalMin int `json:"weekly_goal_min"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.userService.SetWeeklyGoal(r.Context(), userID, req.WeeklyGoalMin); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"weekly_goal_min": req.WeeklyGoalMin})
}
