package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-gateway/internal/weather"
)

var (
	// ErrNotFound is returned when no probe has been recorded yet.
	ErrNotFound = errors.New("no probe results recorded")
)

// MemoryStore is a concurrency-safe in-memory history of upstream probe results.
// It never holds weather data.
type MemoryStore struct {
	mu sync.RWMutex

	results []weather.ProbeResult // ordered by CheckedAt ascending

	// retention configuration
	maxHistory int           // max number of results kept
	maxAge     time.Duration // optional max age for results
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a probe result and enforces retention.
func (s *MemoryStore) Save(result weather.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.results) > s.maxHistory {
		over := len(s.results) - s.maxHistory
		s.results = s.results[over:]
	}

	// Enforce retention by age. The newest result is always kept.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.results)-1; i++ {
			if !s.results[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.results = s.results[i:]
		}
	}
}

// Latest returns the most recent probe result.
func (s *MemoryStore) Latest() (weather.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.results) == 0 {
		return weather.ProbeResult{}, ErrNotFound
	}
	return s.results[len(s.results)-1], nil
}

// Range returns all probe results between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]weather.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.ProbeResult
	for _, r := range s.results {
		if !r.CheckedAt.Before(from) && !r.CheckedAt.After(to) {
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
