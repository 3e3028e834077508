package session

import (
	"context"
	"time"
)

// ReapCallback is called for each session removed by the reaper.
type ReapCallback func(sessionID string)

// StartReaper runs a background goroutine that periodically discards
// sessions idle for longer than ttl. It stops when ctx is done; the returned
// channel is closed once it has.
func (s *Store) StartReaper(ctx context.Context, ttl, interval time.Duration, onReap ReapCallback) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		s.logger.Info("Session reaper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				s.Reap(ttl, onReap)
			case <-ctx.Done():
				s.logger.Info("Session reaper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}

// Reap discards every session idle for longer than ttl and returns how many
// were removed.
func (s *Store) Reap(ttl time.Duration, onReap ReapCallback) int {
	ids := s.expired(ttl)
	if len(ids) == 0 {
		return 0
	}

	s.logger.Info("Session reaper found idle sessions", "count", len(ids))
	for _, id := range ids {
		s.Logout(id)
		if onReap != nil {
			onReap(id)
		}
	}
	return len(ids)
}
