package service

import (
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// DefaultMaxRetained is the number of runs kept when no limit is configured.
const DefaultMaxRetained = 20

// Run is one processed batch.
type Run struct {
	ID        string              `json:"id"`
	FileName  string              `json:"fileName"`
	CreatedAt time.Time           `json:"createdAt"`
	Result    *core.ProcessResult `json:"result"`
}

// RunSummary describes a run without its transactions.
type RunSummary struct {
	ID        string               `json:"id"`
	FileName  string               `json:"fileName"`
	CreatedAt time.Time            `json:"createdAt"`
	Stats     core.ProcessingStats `json:"stats"`
}

// Summary returns the run's listing entry.
func (r *Run) Summary() RunSummary {
	return RunSummary{ID: r.ID, FileName: r.FileName, CreatedAt: r.CreatedAt, Stats: r.Result.Stats}
}

// RunStore keeps the most recent runs in memory. Once full, adding a run
// evicts the oldest.
type RunStore struct {
	max int

	mu    sync.RWMutex
	runs  map[string]*Run
	order []string // oldest first
}

// NewRunStore returns a store holding at most max runs.
func NewRunStore(max int) *RunStore {
	if max <= 0 {
		max = DefaultMaxRetained
	}
	return &RunStore{max: max, runs: make(map[string]*Run)}
}

// Add stores run and returns the ids it evicted.
func (s *RunStore) Add(run *Run) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)

	var evicted []string
	for len(s.order) > s.max {
		id := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, id)
		evicted = append(evicted, id)
	}
	return evicted
}

// Get returns the run with the given id.
func (s *RunStore) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// List returns summaries of the stored runs, newest first.
func (s *RunStore) List() []RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]].Summary())
	}
	return out
}

// Len returns the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
