package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

var ErrPoolClosed = errors.New("worker pool is shut down")

type job struct {
	ctx  context.Context
	task Task
	done func(error)
}

type WorkerPool struct {
	taskQueue chan job
	wg        sync.WaitGroup
	isClosing atomic.Bool // thread-safe value
	closeOnce sync.Once
	mu        sync.RWMutex
	logger    logrus.FieldLogger
}

func NewWorkerPool(size int, logger logrus.FieldLogger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		taskQueue: make(chan job, 1000), // Buffer for 1000 pending tasks
		logger:    logger,
	}

	// Start the workers
	for i := 0; i < size; i++ {
		wp.wg.Add(1) // add to WaitGroup
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done() // signal when worker finished
	for j := range wp.taskQueue {
		err := wp.run(j)
		if j.done != nil {
			j.done(err)
		} else if err != nil {
			wp.logger.WithError(err).Error("Worker task failed")
		}
	}
}

// run isolates a panicking task from the rest of the pool
func (wp *WorkerPool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker task panicked: %v", r)
		}
	}()
	if ctxErr := j.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return j.task(j.ctx)
}

// Submit queues a fire-and-forget task. It reports false when the task was dropped.
func (wp *WorkerPool) Submit(t Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.isClosing.Load() {
		wp.logger.Warn("task submitted during shutdown, dropping.")
		return false
	}
	select {
	case wp.taskQueue <- job{ctx: context.Background(), task: t}: // send task to worker pool
		return true
	default:
		wp.logger.Warn("Task queue full, dropping task!")
		return false
	}
}

// RunAll executes every task on the pool and waits for all of them.
// errs[i] is the result of tasks[i]; one failing task does not stop the others.
func (wp *WorkerPool) RunAll(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	var pending sync.WaitGroup

	wp.mu.RLock()
	for i, t := range tasks {
		i := i
		if wp.isClosing.Load() {
			errs[i] = ErrPoolClosed
			continue
		}
		pending.Add(1)
		j := job{ctx: ctx, task: t, done: func(err error) {
			errs[i] = err
			pending.Done()
		}}
		select {
		case wp.taskQueue <- j:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			pending.Done()
		}
	}
	wp.mu.RUnlock()

	pending.Wait()
	return errs
}

// Shutdown closes the queue and waits for workers to finish
func (wp *WorkerPool) Shutdown() {
	wp.closeOnce.Do(func() {
		wp.isClosing.Store(true)
		wp.mu.Lock()
		close(wp.taskQueue) // Stop accepting new tasks
		wp.mu.Unlock()
	})
	wp.wg.Wait() // Wait for all active workers to finish tasks
}
