package task

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, discardLogger())

	task1 := NewMockTask(uuid.New(), "mock", nil)
	task2 := NewMockTask(uuid.New(), "mock", nil)
	require.NoError(t, queue.Enqueue(task1))
	require.NoError(t, queue.Enqueue(task2))

	err := queue.Enqueue(NewMockTask(uuid.New(), "mock", nil))
	assert.ErrorIs(t, err, ErrQueueFull)

	assert.Equal(t, task1.ID(), (<-queue.GetChannel()).ID())
	assert.Equal(t, task2.ID(), (<-queue.GetChannel()).ID())
}

func TestTaskQueue_Close(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, discardLogger())
	queue.Close()
	queue.Close()

	assert.ErrorIs(t, queue.Enqueue(NewMockTask(uuid.New(), "mock", nil)), ErrQueueClosed)

	_, ok := <-queue.GetChannel()
	assert.False(t, ok)
}

func TestTaskQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(100, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = queue.Enqueue(NewMockTask(uuid.New(), "mock", nil))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Close()
	}()

	assert.NotPanics(t, wg.Wait)
}

func TestNewTaskQueue_MinimumSize(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(0, discardLogger())
	assert.Equal(t, 1, cap(queue.GetChannel()))
}
