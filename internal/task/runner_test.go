package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testRunnerConfig() TaskRunnerConfig {
	cfg := DefaultTaskRunnerConfig()
	cfg.WorkerCount = 2
	cfg.QueueSize = 10
	cfg.StuckTaskCheckInterval = time.Hour
	return cfg
}

func statusOf(store *MockTaskStore, id uuid.UUID) TaskStatus {
	rec, _ := store.Get(id)
	return rec.Status
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())

		task := NewMockTask(uuid.New(), "mock", []byte(`{}`))
		require.NoError(t, runner.Submit(context.Background(), task))

		rec, ok := store.Get(task.ID())
		require.True(t, ok)
		assert.Equal(t, TaskStatusPending, rec.Status)
		assert.Len(t, runner.queue.GetChannel(), 1)
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		cfg := testRunnerConfig()
		cfg.QueueSize = 1
		runner := NewTaskRunner(NewMockTaskStore(), cfg, discardLogger())

		require.NoError(t, runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock", nil)))
		err := runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock", nil))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		store.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("mock store error")
		}
		runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())

		err := runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
		assert.Empty(t, runner.queue.GetChannel())
	})
}

func TestTaskRunner_ProcessesTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	done := make(chan uuid.UUID, 3)
	ids := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		task := NewMockTask(uuid.New(), "mock", nil)
		task.ExecuteFn = func(ctx context.Context) error {
			done <- task.ID()
			return nil
		}
		ids = append(ids, task.ID())
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}

	for _, id := range ids {
		assert.Eventually(t, func() bool {
			return statusOf(store, id) == TaskStatusCompleted
		}, time.Second, 10*time.Millisecond)
	}
}

func TestTaskRunner_FailedTask(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())

	handled := make(chan error, 1)
	runner.SetErrorHandler(func(task Task, err error) { handled <- err })
	require.NoError(t, runner.Start())
	defer runner.Stop()

	task := NewMockTask(uuid.New(), "mock", nil)
	task.ExecuteFn = func(ctx context.Context) error { return errors.New("synthesis exploded") }
	require.NoError(t, runner.Submit(context.Background(), task))

	select {
	case err := <-handled:
		assert.EqualError(t, err, "synthesis exploded")
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}

	assert.Eventually(t, func() bool {
		rec, _ := store.Get(task.ID())
		return rec.Status == TaskStatusFailed && rec.ErrorMessage == "synthesis exploded"
	}, time.Second, 10*time.Millisecond)
}

func TestTaskRunner_RecoverRehydratesTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	pendingID := uuid.New()
	processingID := uuid.New()
	orphanID := uuid.New()
	store.Put(Record{ID: pendingID, Type: "mock", Status: TaskStatusPending})
	store.Put(Record{ID: processingID, Type: "mock", Status: TaskStatusProcessing})
	store.Put(Record{ID: orphanID, Type: "unknown", Status: TaskStatusPending})

	runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())

	executed := make(chan uuid.UUID, 2)
	runner.RegisterRehydrator("mock", func(rec Record) (Task, error) {
		task := NewMockTask(rec.ID, rec.Type, rec.Payload)
		task.ExecuteFn = func(ctx context.Context) error {
			executed <- rec.ID
			return nil
		}
		return task, nil
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-executed:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for recovered tasks")
		}
	}
	assert.True(t, seen[pendingID])
	assert.True(t, seen[processingID])

	rec, ok := store.Get(orphanID)
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, rec.Status)
	assert.Contains(t, rec.ErrorMessage, ErrNoRehydrator.Error())
}

func TestTaskRunner_ResetStuckTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	stuckID := uuid.New()
	freshID := uuid.New()
	old := time.Now().UTC().Add(-2 * time.Hour)
	store.Put(Record{ID: stuckID, Type: "mock", Status: TaskStatusProcessing, CreatedAt: old, UpdatedAt: old})
	store.Put(Record{ID: freshID, Type: "mock", Status: TaskStatusProcessing})

	runner := NewTaskRunner(store, testRunnerConfig(), discardLogger())
	runner.RegisterRehydrator("mock", func(rec Record) (Task, error) {
		return NewMockTask(rec.ID, rec.Type, rec.Payload), nil
	})

	runner.resetStuckTasks(context.Background())

	assert.Equal(t, TaskStatusPending, statusOf(store, stuckID))
	assert.Equal(t, TaskStatusProcessing, statusOf(store, freshID))
	require.Len(t, runner.queue.GetChannel(), 1)
	assert.Equal(t, stuckID, (<-runner.queue.GetChannel()).ID())
}

func TestTaskRunner_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(NewMockTaskStore(), testRunnerConfig(), discardLogger())
	require.NoError(t, runner.Start())

	runner.Stop()
	assert.NotPanics(t, runner.Stop)

	err := runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock", nil))
	assert.ErrorIs(t, err, ErrQueueClosed)
}
