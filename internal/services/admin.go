package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/repository"
)

const (
	minPINLength = 4
	maxPINLength = 32
)

// AdminService covers user administration: roster listing, enrollment
// and PIN resets. Callers are assumed to have passed the admin gate.
type AdminService struct {
	userRepo       *repository.UserRepo
	defaultGoalMin int
}

func NewAdminService(userRepo *repository.UserRepo, defaultGoalMin int) *AdminService {
	return &AdminService{userRepo: userRepo, defaultGoalMin: defaultGoalMin}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *AdminService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if fields := validateNewUser(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := &models.User{
		StudentNo:     strings.TrimSpace(req.StudentNo),
		Name:          strings.TrimSpace(req.Name),
		Nickname:      strings.TrimSpace(req.Nickname),
		PINHash:       string(hash),
		WeeklyGoalMin: s.defaultGoalMin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, &ConflictError{Message: "Student number already registered"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AdminService) ResetPIN(ctx context.Context, req models.ResetPINRequest) error {
	if len(req.NewPIN) < minPINLength || len(req.NewPIN) > maxPINLength {
		return &ValidationError{Fields: map[string]string{
			"new_pin": fmt.Sprintf("must be %d-%d characters", minPINLength, maxPINLength),
		}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPIN), 12)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	updated, err := s.userRepo.UpdatePIN(ctx, strings.TrimSpace(req.StudentNo), string(hash))
	if err != nil {
		return fmt.Errorf("failed to reset PIN: %w", err)
	}
	if !updated {
		return &NotFoundError{Message: "User not found"}
	}
	return nil
}

func validateNewUser(req models.CreateUserRequest) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.StudentNo) == "" {
		fields["student_no"] = "is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	nick := strings.TrimSpace(req.Nickname)
	if nick == "" || len(nick) > 32 {
		fields["nickname"] = "must be 1-32 characters"
	}
	if len(req.PIN) < minPINLength || len(req.PIN) > maxPINLength {
		fields["pin"] = fmt.Sprintf("must be %d-%d characters", minPINLength, maxPINLength)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
