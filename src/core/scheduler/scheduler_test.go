package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalRunnerFires(t *testing.T) {
	var runs int64
	runner := NewInterval("test", 10*time.Millisecond, time.Second, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	runner.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	runner.Stop()

	fired := atomic.LoadInt64(&runs)
	assert.GreaterOrEqual(t, fired, int64(2), "expected repeated runs")

	// No further runs after Stop.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, fired, atomic.LoadInt64(&runs))
}

func TestRunnerSurvivesTaskError(t *testing.T) {
	var runs int64
	runner := NewInterval("flaky", 10*time.Millisecond, time.Second, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return errors.New("transient failure")
	})

	runner.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	runner.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(2), "errors must not stop the loop")
}

func TestRunnerTimeout(t *testing.T) {
	deadline := make(chan bool, 1)
	runner := NewInterval("slow", 10*time.Millisecond, 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			deadline <- true
		case <-time.After(time.Second):
			deadline <- false
		}
		return ctx.Err()
	})

	runner.Start(context.Background())
	select {
	case hit := <-deadline:
		assert.True(t, hit, "task context should expire at the timeout")
	case <-time.After(2 * time.Second):
		t.Fatal("task never observed its deadline")
	}
	runner.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	runner := NewInterval("idem", time.Hour, time.Second, func(context.Context) error { return nil })
	runner.Start(context.Background())

	// A long first interval means Stop must interrupt the wait promptly.
	stopped := make(chan struct{})
	go func() {
		runner.Stop()
		runner.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStopCancelsParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int64
	runner := NewInterval("parent", 10*time.Millisecond, time.Second, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})
	runner.Start(ctx)

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&runs), "parent cancellation must stop the loop")
}

func TestNewDailySchedulesNextOccurrence(t *testing.T) {
	runner := NewDaily("daily", 8, time.Second, func(context.Context) error { return nil })

	before := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, 2*time.Hour, runner.next(before))

	after := time.Date(2026, time.August, 30, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, 22*time.Hour+30*time.Minute, runner.next(after))

	exactly := time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, runner.next(exactly))
}

func TestIntervalNext(t *testing.T) {
	runner := NewInterval("interval", 5*time.Minute, time.Second, func(context.Context) error { return nil })
	require.Equal(t, 5*time.Minute, runner.next(time.Now()))
}
