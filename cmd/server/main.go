package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyroom-backend/internal/config"
	"studyroom-backend/internal/database"
	"studyroom-backend/internal/handlers"
	"studyroom-backend/internal/jobs"
	"studyroom-backend/internal/middleware"
	"studyroom-backend/internal/repository"
	"studyroom-backend/internal/router"
	"studyroom-backend/internal/services"
	"studyroom-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Study Room Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	loc := cfg.Location()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Cache, jwtAuth, cfg.AdminPassword)
	presenceService := services.NewPresenceService(sessionRepo, redisClients.Cache, loc)
	statsService := services.NewStatsService(sessionRepo, userRepo, redisClients.Cache, loc, cfg.WeekStart, cfg.StreakCutoffHour)
	userService := services.NewUserService(userRepo)
	adminService := services.NewAdminService(userRepo, cfg.DefaultWeeklyGoalMin)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	presenceHandler := handlers.NewPresenceHandler(authService, presenceService)
	dashboardHandler := handlers.NewDashboardHandler(userService, statsService, presenceService)
	leaderboardHandler := handlers.NewLeaderboardHandler(statsService)
	adminHandler := handlers.NewAdminHandler(adminService, presenceService)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret, services.PresenceEventsChannel)
	wsHub.Run(context.Background())
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start Stale Session Sweeper ────
	sweeper := jobs.NewStaleSessionSweeper(sessionRepo, wsHub, time.Duration(cfg.MaxSessionHours)*time.Hour)
	sweeper.Start()
	log.Printf("✓ Stale session sweeper started (max %dh)", cfg.MaxSessionHours)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		presenceHandler,
		dashboardHandler,
		leaderboardHandler,
		adminHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sweeper.Stop()
		wsHub.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Study Room Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
