package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/repository"
	"studyroom-backend/internal/stats"
)

// PresenceEventsChannel carries check-in/out notifications to the
// websocket hub via redis pub/sub.
const PresenceEventsChannel = "presence_events"

// sessionStore is the slice of the session repository the state
// machine needs. Kept narrow so the concurrency invariants can be
// exercised against an in-memory implementation.
type sessionStore interface {
	Open(ctx context.Context, userID uuid.UUID, at time.Time) (*models.Session, error)
	CloseOpen(ctx context.Context, userID uuid.UUID, at time.Time) (*models.Session, error)
	CloseAllOpen(ctx context.Context, at time.Time) (int, error)
	GetOpen(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	Occupancy(ctx context.Context) (int, error)
}

type PresenceEvent struct {
	Type      string    `json:"type"` // "checkin" | "checkout" | "force_checkout"
	UserID    uuid.UUID `json:"user_id"`
	Nickname  string    `json:"nickname,omitempty"`
	Occupancy int       `json:"occupancy"`
	At        time.Time `json:"at"`
}

type PresenceService struct {
	sessions sessionStore
	redis    *redis.Client
	loc      *time.Location
	now      func() time.Time
}

func NewPresenceService(sessions sessionStore, redisClient *redis.Client, loc *time.Location) *PresenceService {
	return &PresenceService{
		sessions: sessions,
		redis:    redisClient,
		loc:      loc,
		now:      time.Now,
	}
}

// CheckIn opens a session for the user. The store rejects a second
// open session, so a double submit loses cleanly.
func (s *PresenceService) CheckIn(ctx context.Context, user *models.User) (*models.Session, error) {
	sess, err := s.sessions.Open(ctx, user.ID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrActiveSessionExists) {
			return nil, &AlreadyCheckedInError{}
		}
		return nil, err
	}

	s.publish(ctx, "checkin", user.ID, user.Nickname)
	return sess, nil
}

// CheckOut seals the user's open session and returns it with the
// computed duration.
func (s *PresenceService) CheckOut(ctx context.Context, user *models.User) (*models.Session, error) {
	sess, err := s.sessions.CloseOpen(ctx, user.ID, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotCheckedInError{}
		}
		return nil, err
	}

	if sess.ClockSkew {
		log.Printf("audit: clock skew on session %s (user %s): checkout not after checkin, duration clamped to 0", sess.ID, user.ID)
	}

	s.invalidateLeaderboard(ctx)
	s.publish(ctx, "checkout", user.ID, user.Nickname)
	return sess, nil
}

// Status reports IN/OUT plus live elapsed seconds, computed against
// now rather than stored.
func (s *PresenceService) Status(ctx context.Context, userID uuid.UUID) (*models.PresenceStatus, error) {
	sess, err := s.sessions.GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.PresenceStatus{State: "OUT"}, nil
		}
		return nil, err
	}

	elapsed := int(s.now().Sub(sess.CheckinAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return &models.PresenceStatus{
		State:      "IN",
		CheckinAt:  &sess.CheckinAt,
		ElapsedSec: elapsed,
	}, nil
}

// ForceCheckout closes the user's open session if there is one. No
// open session is a no-op reporting zero affected, not an error.
func (s *PresenceService) ForceCheckout(ctx context.Context, userID uuid.UUID) (durationSec int, affected bool, err error) {
	sess, err := s.sessions.CloseOpen(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	s.invalidateLeaderboard(ctx)
	s.publish(ctx, "force_checkout", userID, "")
	return sess.DurationSec, true, nil
}

// ForceCheckoutAll closes every open session and returns the count.
// The single-statement close means a check-in racing the sweep either
// lands in the snapshot and closes, or stays open untouched.
func (s *PresenceService) ForceCheckoutAll(ctx context.Context) (int, error) {
	count, err := s.sessions.CloseAllOpen(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.invalidateLeaderboard(ctx)
		s.publish(ctx, "force_checkout", uuid.Nil, "")
	}
	return count, nil
}

func (s *PresenceService) Occupancy(ctx context.Context) (int, error) {
	return s.sessions.Occupancy(ctx)
}

func (s *PresenceService) publish(ctx context.Context, eventType string, userID uuid.UUID, nickname string) {
	if s.redis == nil {
		return
	}

	occupancy, err := s.sessions.Occupancy(ctx)
	if err != nil {
		occupancy = -1
	}

	payload, err := json.Marshal(PresenceEvent{
		Type:      eventType,
		UserID:    userID,
		Nickname:  nickname,
		Occupancy: occupancy,
		At:        s.now(),
	})
	if err != nil {
		return
	}

	if err := s.redis.Publish(ctx, PresenceEventsChannel, payload).Err(); err != nil {
		log.Printf("presence: failed to publish %s event: %v", eventType, err)
	}
}

// invalidateLeaderboard drops today's cached boards whenever a session
// closes; the recompute path stays authoritative.
func (s *PresenceService) invalidateLeaderboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	day := stats.DayStart(s.now(), s.loc).Format("2006-01-02")
	for _, rng := range []models.RangeName{models.RangeToday, models.RangeWeek, models.RangeMonth, models.RangeAll} {
		s.redis.Del(ctx, leaderboardCacheKey(rng, day))
	}
}

// Presence errors are precondition violations, not system failures;
// they surface verbatim to the caller and are never logged as errors.

type AlreadyCheckedInError struct{}

func (e *AlreadyCheckedInError) Error() string {
	return "Already checked in. Check out before checking in again."
}

type NotCheckedInError struct{}

func (e *NotCheckedInError) Error() string {
	return "No open session found. Check in first."
}
