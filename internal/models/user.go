package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	StudentNo     string    `json:"student_no"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname"`
	PINHash       string    `json:"-"`
	WeeklyGoalMin int       `json:"weekly_goal_min"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	StudentNo string `json:"student_no"`
	PIN       string `json:"pin"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateUserRequest struct {
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	PIN       string `json:"pin"`
}

type ResetPINRequest struct {
	StudentNo string `json:"student_no"`
	NewPIN    string `json:"new_pin"`
}
