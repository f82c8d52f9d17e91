// Package sweep runs many independent scenarios on a bounded worker pool.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/simulation"
	"golang.org/x/sync/errgroup"
)

// ProgressListener receives progress updates. Listeners are called from
// worker goroutines and must be safe for concurrent use.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventSweepStart    EventType = "sweep_start"
	EventSweepComplete EventType = "sweep_complete"
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Scenario   string
	RunNum     int
	TotalRuns  int
	DurationMs int64
	Err        error
}

// Outcome is the result of one scenario of a sweep. Exactly one of Result
// and Err is set.
type Outcome struct {
	Index    int
	Scenario string
	Result   *simulation.Result
	Err      error
}

// Runner executes scenarios concurrently.
type Runner struct {
	workers  int
	defaults simulation.Defaults

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of scenarios simulated at once. Values
// below one select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithDefaults sets the solver defaults passed to every run.
func WithDefaults(d simulation.Defaults) Option {
	return func(r *Runner) {
		r.defaults = d
	}
}

// NewRunner creates a new sweep runner
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run simulates every scenario and returns the outcomes in input order. A
// failing scenario does not stop the others. The returned error is non-nil
// only when ctx ends before all runs started.
func (r *Runner) Run(ctx context.Context, scenarios []*models.Scenario) ([]Outcome, error) {
	start := time.Now()
	total := len(scenarios)
	outcomes := make([]Outcome, total)

	r.notifyProgress(ProgressEvent{EventType: EventSweepStart, TotalRuns: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, sc := range scenarios {
		name := scenarioName(sc, i)
		if err := gctx.Err(); err != nil {
			outcomes[i] = Outcome{Index: i, Scenario: name, Err: err}
			continue
		}
		g.Go(func() error {
			r.notifyProgress(ProgressEvent{EventType: EventRunStart, Scenario: name, RunNum: i + 1, TotalRuns: total})
			slog.Debug("sweep run starting", "scenario", name, "run", i+1, "of", total)

			runStart := time.Now()
			res, err := simulation.Run(gctx, sc, r.defaults)
			outcomes[i] = Outcome{Index: i, Scenario: name, Result: res, Err: err}

			slog.Debug("sweep run finished", "scenario", name, "error", err)
			r.notifyProgress(ProgressEvent{
				EventType:  EventRunComplete,
				Scenario:   name,
				RunNum:     i + 1,
				TotalRuns:  total,
				DurationMs: time.Since(runStart).Milliseconds(),
				Err:        err,
			})
			return nil
		})
	}
	_ = g.Wait()

	r.notifyProgress(ProgressEvent{
		EventType:  EventSweepComplete,
		TotalRuns:  total,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return outcomes, ctx.Err()
}

func scenarioName(sc *models.Scenario, i int) string {
	if sc.Name != "" {
		return sc.Name
	}
	return fmt.Sprintf("scenario-%d", i+1)
}
