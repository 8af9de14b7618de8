package snapshot

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	for i := 0; i < 20; i++ {
		d.Trigger()
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a burst collapses into one save")
}

func TestDebouncerResetsOnNewTrigger(t *testing.T) {
	var calls int32
	d := NewDebouncer(50*time.Millisecond, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "quiet period not yet reached")

	// The second trigger re-arms the timer, pushing the save out again.
	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncerFiresAgainAfterQuiet(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	d.Trigger()
	time.Sleep(60 * time.Millisecond)
	d.Trigger()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	d.Trigger()
	d.Stop()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	// Triggers after Stop are ignored.
	d.Trigger()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDebouncerTriggerDuringRunSchedulesFollowup(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	d := NewDebouncer(10*time.Millisecond, func() error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return nil
	})

	d.Trigger()
	<-started

	// Arrives while the first save is still running.
	d.Trigger()
	close(release)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
