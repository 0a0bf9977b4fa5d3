package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a unit of periodic background work.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Worker runs a task on a fixed interval until stopped
type Worker struct {
	name     string
	task     Task
	interval time.Duration
	log      zerolog.Logger
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, task Task, interval time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		name:     name,
		task:     task,
		interval: interval,
		log:      log.With().Str("worker", name).Logger(),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the loop and blocks until ctx is done or Stop is called
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.log.Info().Dur("interval", w.interval).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				w.log.Error().Err(err).Msg("task failed")
			}
		}
	}
}

// Stop signals the loop and waits for it to exit. It must only be called
// after Start.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	w.log.Info().Msg("worker shutdown complete")
}
