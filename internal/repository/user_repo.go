package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyroom-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, student_no, name, nickname, pin_hash, weekly_goal_min)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	user.ID = uuid.New()

	return r.pool.QueryRow(ctx, query,
		user.ID, user.StudentNo, user.Name, user.Nickname, user.PINHash, user.WeeklyGoalMin,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByStudentNo(ctx context.Context, studentNo string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, student_no, name, nickname, pin_hash, weekly_goal_min, created_at
		FROM users WHERE student_no = $1`

	err := r.pool.QueryRow(ctx, query, studentNo).Scan(
		&user.ID, &user.StudentNo, &user.Name, &user.Nickname, &user.PINHash,
		&user.WeeklyGoalMin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, student_no, name, nickname, pin_hash, weekly_goal_min, created_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.StudentNo, &user.Name, &user.Nickname, &user.PINHash,
		&user.WeeklyGoalMin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, student_no, name, nickname, weekly_goal_min, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT 500`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.StudentNo, &u.Name, &u.Nickname, &u.WeeklyGoalMin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AllIDs returns every registered user id; the ranking universe
// includes users with zero presence.
func (r *UserRepo) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Nicknames returns id → nickname for leaderboard display.
func (r *UserRepo) Nicknames(ctx context.Context) (map[uuid.UUID]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, nickname FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nicks := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var nick string
		if err := rows.Scan(&id, &nick); err != nil {
			return nil, err
		}
		nicks[id] = nick
	}
	return nicks, rows.Err()
}

func (r *UserRepo) UpdatePIN(ctx context.Context, studentNo, pinHash string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET pin_hash = $1 WHERE student_no = $2", pinHash, studentNo)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepo) UpdateWeeklyGoal(ctx context.Context, userID uuid.UUID, goalMin int) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET weekly_goal_min = $1 WHERE id = $2", goalMin, userID)
	return err
}
