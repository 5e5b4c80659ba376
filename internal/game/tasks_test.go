// internal/game/tasks_test.go
package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunner_ScheduleFires(t *testing.T) {
	tr := newTaskRunner()
	var fired atomic.Int32
	tr.Schedule("k", 5*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTaskRunner_CancelPreventsFire(t *testing.T) {
	tr := newTaskRunner()
	var fired atomic.Int32
	tr.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })
	tr.Cancel("k")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTaskRunner_RescheduleReplaces(t *testing.T) {
	tr := newTaskRunner()
	var first, second atomic.Int32
	tr.Schedule("k", 10*time.Millisecond, func() { first.Add(1) })
	tr.Schedule("k", 20*time.Millisecond, func() { second.Add(1) })

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, first.Load(), "superseded callback must never run")
	assert.Equal(t, int32(1), second.Load())
}

func TestTaskRunner_CancelPrefix(t *testing.T) {
	tr := newTaskRunner()
	var a, b, c atomic.Int32
	tr.Schedule("room-1/grace/host", 10*time.Millisecond, func() { a.Add(1) })
	tr.Schedule("room-1/sweep", 10*time.Millisecond, func() { b.Add(1) })
	tr.Schedule("room-2/sweep", 10*time.Millisecond, func() { c.Add(1) })
	tr.CancelPrefix("room-1/")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, a.Load())
	assert.Zero(t, b.Load())
	assert.Equal(t, int32(1), c.Load())
}
