package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTask is a mock implementation of Task
type MockTask struct {
	mock.Mock
}

func (m *MockTask) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSweeper is a mock implementation of Sweeper
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestWorker_StartStop(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(nil)

	worker := NewWorker("test", mockTask, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockTask.AssertCalled(t, "Run", mock.Anything)
}

func TestWorker_ContextCancellation(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(nil)

	worker := NewWorker("test", mockTask, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockTask.AssertCalled(t, "Run", mock.Anything)

	// Stop after the loop exited must not block
	worker.Stop()
}

func TestWorker_TaskErrorKeepsRunning(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	task := TaskFunc(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("transient")
	})

	worker := NewWorker("test", task, 20*time.Millisecond, zerolog.Nop())
	go worker.Start(context.Background())

	time.Sleep(150 * time.Millisecond)
	worker.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2)
}

func TestSessionSweepTask(t *testing.T) {
	sweeper := new(MockSweeper)
	sweeper.On("Sweep", mock.Anything).Return(3, nil).Once()
	sweeper.On("Sweep", mock.Anything).Return(0, errors.New("cancelled")).Once()

	task := SessionSweepTask(sweeper, zerolog.Nop())

	assert.NoError(t, task.Run(context.Background()))
	assert.Error(t, task.Run(context.Background()))
	sweeper.AssertExpectations(t)
}
