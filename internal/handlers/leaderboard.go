package handlers

import (
	"net/http"
	"strconv"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/services"
)

type LeaderboardHandler struct {
	statsService *services.StatsService
}

func NewLeaderboardHandler(statsService *services.StatsService) *LeaderboardHandler {
	return &LeaderboardHandler{statsService: statsService}
}

// Get serves GET /leaderboard?range=week&top=10&anonymize=true.
// Defaults: range=today, top=10.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	rng := models.RangeName(r.URL.Query().Get("range"))
	if rng == "" {
		rng = models.RangeToday
	}

	top := 10
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"top": "must be an integer"}, r))
			return
		}
		top = n
	}

	anon := r.URL.Query().Get("anonymize")
	anonymize := anon == "true" || anon == "1"

	board, err := h.statsService.Leaderboard(r.Context(), rng, top, anonymize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}
