package controller

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalescerFiresOnceWithLastClosure(t *testing.T) {
	c := newCoalescer(20 * time.Millisecond)

	var fired atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 3; i++ {
		i := i
		c.Do(func() {
			fired.Add(1)
			last.Store(int32(i))
		})
	}

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(3), last.Load(), "the last call's arguments win")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "the window fires exactly once")
}

func TestCoalescerCancel(t *testing.T) {
	c := newCoalescer(20 * time.Millisecond)

	var fired atomic.Int32
	c.Do(func() { fired.Add(1) })
	c.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCoalescerReusableAfterFire(t *testing.T) {
	c := newCoalescer(10 * time.Millisecond)

	var fired atomic.Int32
	c.Do(func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	c.Do(func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, time.Millisecond)
}
