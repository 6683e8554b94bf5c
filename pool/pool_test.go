// ABOUTME: Tests for the worker pool
// ABOUTME: Verifies every submitted task runs before Wait returns

package pool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	p := NewWorkerPool(4, 2)
	defer p.Close()

	var count atomic.Int64
	for i := range 100 {
		p.Submit(func() { count.Add(int64(i)) })
	}
	p.Wait()

	assert.Equal(t, int64(4950), count.Load())
	assert.Equal(t, 4, p.Workers())
}

func TestWorkerPool_DefaultWorkers(t *testing.T) {
	p := NewWorkerPool(0, 0)
	defer p.Close()

	assert.Positive(t, p.Workers())

	done := false
	p.Submit(func() { done = true })
	p.Wait()
	assert.True(t, done)
}
