package frame

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Service runs resolution passes on an interval and holds the latest result
// for concurrent readers. The served set only ever moves forward: a pass that
// resolves zero frames keeps the previous set in place.
type Service struct {
	resolver *Resolver
	interval time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	frames  []Frame
	updated time.Time
}

// NewService wraps a resolver with a refresh loop.
func NewService(resolver *Resolver, interval time.Duration, logger *slog.Logger) *Service {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Service{
		resolver: resolver,
		interval: interval,
		logger:   logger.With("component", "frames"),
	}
}

// Refresh runs one resolution pass and publishes the result.
func (s *Service) Refresh(ctx context.Context) {
	frames := s.resolver.ResolveAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(frames) == 0 && len(s.frames) > 0 {
		s.logger.Warn("pass resolved no frames, keeping previous set", "previous", len(s.frames))
		return
	}
	s.frames = frames
	s.updated = time.Now().UTC()
}

// Run refreshes immediately and then on every interval tick until the context
// is canceled.
func (s *Service) Run(ctx context.Context) {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Frames returns a copy of the latest resolved set.
func (s *Service) Frames() []Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// UpdatedAt reports when the served set was last published. Zero until the
// first pass completes.
func (s *Service) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Ready reports whether at least one pass has published a result.
func (s *Service) Ready() bool {
	return !s.UpdatedAt().IsZero()
}
