package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type window struct {
	start time.Time
	count int
}

// MemoryStore keeps windows in process memory. State is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	period  time.Duration
	limit   int
	now     Clock

	cron *cron.Cron
}

type MemoryOption func(*MemoryStore)

func WithClock(now Clock) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(period time.Duration, limit int, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		period:  period,
		limit:   limit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Admit(_ context.Context, key string) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.start.Add(s.period)) {
		w = &window{start: now}
		s.windows[key] = w
	}
	w.count++

	return Decision{
		Allowed: w.count <= s.limit,
		Count:   w.count,
		Limit:   s.limit,
		ResetAt: w.start.Add(s.period),
	}, nil
}

// Sweep drops windows that have already expired and returns how many went.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if !now.Before(w.start.Add(s.period)) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// StartSweeper runs Sweep on a cron schedule such as "@every 5m".
func (s *MemoryStore) StartSweeper(schedule string, onSweep func(removed int)) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		removed := s.Sweep()
		if onSweep != nil {
			onSweep(removed)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	return nil
}

func (s *MemoryStore) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
