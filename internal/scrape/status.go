// engine/internal/scrape/status.go
package scrape

import (
	"sync"
	"sync/atomic"
)

// Pipeline phases in order.
const (
	PhaseIdle      = ""
	PhaseDiscovery = "discovery"
	PhaseCleaning  = "cleaning"
	PhaseDetails   = "details"
	PhaseCompleted = "completed"
)

// RunStatus is the control surface's view of the pipeline. Not
// persisted; a restart forgets it.
type RunStatus struct {
	Running       bool   `json:"running"`
	Progress      int    `json:"progress"`
	Phase         string `json:"phase"`
	LastCompleted string `json:"last_completed,omitempty"`
	CurrentCity   string `json:"current_city,omitempty"`
	Completed     bool   `json:"completed"`
	Error         string `json:"error,omitempty"`
	NoResults     bool   `json:"no_results"`
}

// Status holds the live RunStatus. Readers get lock-free snapshots;
// the single writer goes through Update.
type Status struct {
	mu sync.Mutex
	v  atomic.Value
}

func NewStatus() *Status {
	s := &Status{}
	s.v.Store(RunStatus{})
	return s
}

func (s *Status) Get() RunStatus {
	return s.v.Load().(RunStatus)
}

func (s *Status) Update(f func(*RunStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.v.Load().(RunStatus)
	f(&cur)
	s.v.Store(cur)
}

func (s *Status) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Store(RunStatus{})
}
