// engine/internal/scrape/runner.go
package scrape

import (
	"context"
	"errors"
	"sync"

	"outreach-engine/internal/config"
)

// ErrAlreadyRunning is returned when a run is requested mid-run.
var ErrAlreadyRunning = errors.New("scrape already running")

// Runner serializes pipeline runs: one at a time, cancellable.
type Runner struct {
	// New builds a pipeline against the config snapshot for this run.
	New func(cfg config.Config) *Pipeline

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches a run in the background.
func (r *Runner) Start(cfg config.Config, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	p := r.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true

	go func() {
		defer cancel()
		p.Run(ctx, opts)

		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
	}()
	return nil
}

// Stop cancels the active run, if any. The pipeline tears its session
// down on the way out.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
