package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	// Redis
	RedisURL string

	// Auth
	JWTSecret     string
	AdminPassword string

	// Room policy
	Timezone             string
	WeekStart            time.Weekday
	StreakCutoffHour     int
	DefaultWeeklyGoalMin int
	MaxSessionHours      int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		DBMaxConns:           getEnvAsIntOrDefault("DB_MAX_CONNS", 25),
		DBMinConns:           getEnvAsIntOrDefault("DB_MIN_CONNS", 5),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		AdminPassword:        mustGetEnv("ADMIN_PASSWORD"),
		Timezone:             getEnvOrDefault("TIMEZONE", "Asia/Tokyo"),
		WeekStart:            parseWeekday(getEnvOrDefault("WEEK_START", "monday")),
		StreakCutoffHour:     getEnvAsIntOrDefault("STREAK_CUTOFF_HOUR", 18),
		DefaultWeeklyGoalMin: getEnvAsIntOrDefault("DEFAULT_WEEKLY_GOAL_MINUTES", 600),
		MaxSessionHours:      getEnvAsIntOrDefault("MAX_SESSION_HOURS", 12),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// Location resolves the configured IANA zone; day boundaries and ranges
// are all computed in this zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		panic(fmt.Sprintf("invalid TIMEZONE %q: %v", c.Timezone, err))
	}
	return loc
}

func parseWeekday(s string) time.Weekday {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	}
	return time.Monday
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
