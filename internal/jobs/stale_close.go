package jobs

import (
	"context"
	"log"
	"time"

	"studyroom-backend/internal/repository"
)

const sweepPollInterval = 5 * time.Minute

// broadcaster lets the sweeper announce sweeps to connected clients.
type broadcaster interface {
	Broadcast(msg interface{})
}

// StaleSessionSweeper closes sessions whose owner walked out without
// tapping the kiosk. Anything open longer than maxAge gets sealed at
// sweep time with the full elapsed duration.
type StaleSessionSweeper struct {
	sessionRepo *repository.SessionRepo
	hub         broadcaster
	maxAge      time.Duration
	stopChan    chan struct{}
}

func NewStaleSessionSweeper(sessionRepo *repository.SessionRepo, hub broadcaster, maxAge time.Duration) *StaleSessionSweeper {
	return &StaleSessionSweeper{
		sessionRepo: sessionRepo,
		hub:         hub,
		maxAge:      maxAge,
		stopChan:    make(chan struct{}),
	}
}

func (s *StaleSessionSweeper) Start() {
	if s.sessionRepo == nil || s.maxAge <= 0 {
		return
	}

	go s.loop()
	log.Printf("Stale session sweeper started (max age %s)", s.maxAge)
}

func (s *StaleSessionSweeper) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *StaleSessionSweeper) loop() {
	// Run on startup as well as by interval.
	s.sweep(context.Background(), time.Now())

	ticker := time.NewTicker(sweepPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(context.Background(), time.Now())
		}
	}
}

func (s *StaleSessionSweeper) sweep(ctx context.Context, now time.Time) {
	closed, err := s.sessionRepo.CloseStale(ctx, now.Add(-s.maxAge), now)
	if err != nil {
		log.Printf("stale sweep: failed to close sessions: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("stale sweep: closed %d session(s) older than %s", closed, s.maxAge)
		if s.hub != nil {
			s.hub.Broadcast(map[string]interface{}{
				"type":   "stale_sweep",
				"closed": closed,
				"at":     now,
			})
		}
	}
}
