package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyroom-backend/internal/handlers"
	"studyroom-backend/internal/middleware"
	"studyroom-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	presenceHandler *handlers.PresenceHandler,
	dashboardHandler *handlers.DashboardHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (30 req/min per IP; the kiosk shares one IP)
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", authHandler.Login)
			r.Post("/admin-login", authHandler.AdminLogin)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// ──── Kiosk Routes (credential in body) ────
		r.Route("/kiosk", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/checkin", presenceHandler.CheckIn)
			r.Post("/checkout", presenceHandler.CheckOut)
			r.Get("/occupancy", presenceHandler.Occupancy)
		})

		// ──── Leaderboard (public, read-only) ────
		r.Get("/leaderboard", leaderboardHandler.Get)

		// ──── Personal Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", dashboardHandler.Me)
			r.Get("/me/status", presenceHandler.Status)
			r.Get("/me/daily", dashboardHandler.Daily)
			r.Get("/me/sessions", dashboardHandler.History)
			r.Put("/me/weekly-goal", dashboardHandler.SetWeeklyGoal)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.AdminOnly)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Post("/users/reset-pin", adminHandler.ResetPIN)
			r.Post("/users/{id}/force-checkout", adminHandler.ForceCheckout)
			r.Post("/force-checkout-all", adminHandler.ForceCheckoutAll)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
