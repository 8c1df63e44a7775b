package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"studyroom-backend/internal/middleware"
	"studyroom-backend/internal/models"
	"studyroom-backend/internal/repository"
)

const credentialFailureMessage = "Invalid student number or PIN"

type AuthService struct {
	userRepo      *repository.UserRepo
	redis         *redis.Client
	jwt           *middleware.JWTAuth
	adminPassword string
}

func NewAuthService(userRepo *repository.UserRepo, redisClient *redis.Client, jwt *middleware.JWTAuth, adminPassword string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		redis:         redisClient,
		jwt:           jwt,
		adminPassword: adminPassword,
	}
}

// VerifyCredential checks a student number + PIN pair. Failures are a
// single generic message so callers cannot discover which student numbers
// exist.
func (s *AuthService) VerifyCredential(ctx context.Context, studentNo, pin string) (*models.User, error) {
	if studentNo == "" || pin == "" {
		return nil, &UnauthorizedError{Message: credentialFailureMessage}
	}

	user, err := s.userRepo.GetByStudentNo(ctx, studentNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: credentialFailureMessage}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return nil, &UnauthorizedError{Message: credentialFailureMessage}
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	user, err := s.VerifyCredential(ctx, req.StudentNo, req.PIN)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user.ID, middleware.RoleUser)
}

func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.AuthTokens, error) {
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) != 1 {
		return nil, &UnauthorizedError{Message: "Invalid admin password"}
	}
	return s.issueTokens(ctx, uuid.Nil, middleware.RoleAdmin)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	val, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	var role string
	var userID uuid.UUID
	if val == middleware.RoleAdmin {
		role = middleware.RoleAdmin
	} else {
		role = middleware.RoleUser
		userID, err = uuid.Parse(val)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in refresh token: %w", err)
		}
	}

	// Delete old token (rotation)
	s.redis.Del(ctx, "refresh:"+refreshToken)

	if role == middleware.RoleUser {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return nil, &UnauthorizedError{Message: "Account no longer exists"}
		}
	}

	return s.issueTokens(ctx, userID, role)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID, role string) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := generateToken(32)
	if err != nil {
		return nil, err
	}

	val := userID.String()
	if role == middleware.RoleAdmin {
		val = middleware.RoleAdmin
	}
	if err := s.redis.Set(ctx, "refresh:"+refreshToken, val, 30*24*time.Hour).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int((15 * time.Minute).Seconds()),
	}, nil
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
