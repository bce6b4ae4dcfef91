package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Result records the outcome of one processed job.
type Result struct {
	Name     string  `json:"name"`
	Status   string  `json:"status"` // "ok" | "failed"
	Error    string  `json:"error,omitempty"`
	Output   string  `json:"output,omitempty"`
	MeanRM   float64 `json:"mean_rm_rad_m2"`
	Channels int     `json:"channels"`

	CompletedAt time.Time `json:"completed_at"`
	ElapsedS    float64   `json:"elapsed_s"`
}

// Entry is a result together with the time it was stored.
type Entry struct {
	Result    Result
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory job result store, keyed by job name.
// A background goroutine (Run) periodically evicts entries that have not
// been updated within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// NewStore creates a Store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the result for res.Name.
func (s *Store) Put(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[res.Name] = &Entry{
		Result:    res,
		UpdatedAt: s.now(),
	}
}

// Get returns the Entry for the given job name and a boolean indicating
// whether an entry was found.
func (s *Store) Get(name string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[name]
	return e, ok
}

// List returns all entries whose UpdatedAt is within the TTL. Stale entries
// that have not yet been evicted are excluded.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for name, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, name)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so entries are evicted promptly. Run blocks
// until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale job results", "count", n)
			}
		}
	}
}
