package webapi

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// DefaultStoreCapacity is the number of runs a MemoryStore keeps.
const DefaultStoreCapacity = 100

// RunStore keeps the runs served by the API.
type RunStore interface {
	// Add stores a run and assigns its ID and timestamp.
	Add(run *RunDetail) string
	// ListRuns returns all runs, sorted by the given field and order.
	ListRuns(sortField, order string) []RunSummary
	// GetRun returns a single run with its trajectory.
	GetRun(id string) (*RunDetail, error)
}

// MemoryStore is a bounded, in-process RunStore. The oldest run is evicted
// once capacity is reached.
type MemoryStore struct {
	capacity int
	now      func() time.Time

	mu    sync.RWMutex
	next  int
	order []string
	runs  map[string]*RunDetail
}

// NewMemoryStore creates a MemoryStore holding at most capacity runs.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		now:      time.Now,
		runs:     make(map[string]*RunDetail),
	}
}

func (s *MemoryStore) Add(run *RunDetail) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	run.ID = fmt.Sprintf("run-%d", s.next)
	run.Timestamp = s.now()
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)

	for len(s.order) > s.capacity {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return run.ID
}

func (s *MemoryStore) ListRuns(sortField, order string) []RunSummary {
	s.mu.RLock()
	runs := make([]RunSummary, 0, len(s.runs))
	for _, id := range s.order {
		runs = append(runs, s.runs[id].RunSummary)
	}
	s.mu.RUnlock()

	sortRuns(runs, sortField, order)
	return runs
}

func (s *MemoryStore) GetRun(id string) (*RunDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func sortRuns(runs []RunSummary, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "peak":
			return runs[i].PeakInfectious < runs[j].PeakInfectious
		case "deaths":
			return runs[i].TotalDeaths < runs[j].TotalDeaths
		case "duration":
			return runs[i].Duration < runs[j].Duration
		default: // "timestamp" or empty
			return runs[i].Timestamp.Before(runs[j].Timestamp)
		}
	}

	if order == "asc" {
		sort.SliceStable(runs, less)
	} else {
		sort.SliceStable(runs, func(i, j int) bool { return less(j, i) })
	}
}

// Ensure MemoryStore satisfies RunStore.
var _ RunStore = (*MemoryStore)(nil)
