package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/repository"
)

// A week has 10080 minutes; a goal beyond that can never be met.
const maxWeeklyGoalMin = 7 * 24 * 60

type UserService struct {
	userRepo *repository.UserRepo
}

func NewUserService(userRepo *repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// SetWeeklyGoal stores the goal in minutes. Zero clears the goal.
func (s *UserService) SetWeeklyGoal(ctx context.Context, userID uuid.UUID, goalMin int) error {
	if goalMin < 0 || goalMin > maxWeeklyGoalMin {
		return &ValidationError{Fields: map[string]string{
			"weekly_goal_min": fmt.Sprintf("must be between 0 and %d", maxWeeklyGoalMin),
		}}
	}
	if err := s.userRepo.UpdateWeeklyGoal(ctx, userID, goalMin); err != nil {
		return fmt.Errorf("failed to update weekly goal: %w", err)
	}
	return nil
}
