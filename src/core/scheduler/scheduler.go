// Package scheduler provides the recurring background tasks of the
// convivial services: a fixed-interval runner for the gift reveal sweep
// and a time-of-day runner for the daily digest. Task failures are logged
// and retried on the next tick; they never stop the loop.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task is one unit of scheduled work. The context carries the per-run
// timeout; a returned error is logged, not propagated.
type Task func(ctx context.Context) error

// Runner executes a Task on a schedule until stopped.
type Runner struct {
	name    string
	timeout time.Duration
	task    Task
	next    func(now time.Time) time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewInterval returns a Runner firing every interval, first run one full
// interval after Start.
func NewInterval(name string, interval, timeout time.Duration, task Task) *Runner {
	return &Runner{
		name:    name,
		timeout: timeout,
		task:    task,
		next: func(time.Time) time.Duration {
			return interval
		},
	}
}

// NewDaily returns a Runner firing once per day at the given local hour.
func NewDaily(name string, hour int, timeout time.Duration, task Task) *Runner {
	return &Runner{
		name:    name,
		timeout: timeout,
		task:    task,
		next: func(now time.Time) time.Duration {
			run := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
			if !run.After(now) {
				run = run.AddDate(0, 0, 1)
			}
			return run.Sub(now)
		},
	}
}

// Start launches the runner's loop in its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		for {
			timer := time.NewTimer(r.next(time.Now()))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			r.run(ctx)
		}
	}()
	log.Printf("Scheduler %s started\n", r.name)
}

func (r *Runner) run(ctx context.Context) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.task(runCtx); err != nil {
		log.Printf("Scheduler %s run failed: %v\n", r.name, err)
	}
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (r *Runner) Stop() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
			<-r.done
		}
		log.Printf("Scheduler %s stopped\n", r.name)
	})
}
