package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newPool(size int) *WorkerPool {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewWorkerPool(size, logger)
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	pool := newPool(3)
	defer pool.Shutdown()

	var ran atomic.Int32
	boom := errors.New("boom")
	tasks := []Task{
		func(ctx context.Context) error { ran.Add(1); return nil },
		func(ctx context.Context) error { ran.Add(1); return boom },
		func(ctx context.Context) error { ran.Add(1); panic("bad row") },
		func(ctx context.Context) error { ran.Add(1); return nil },
	}

	errs := pool.RunAll(context.Background(), tasks)

	assert.Equal(t, int32(4), ran.Load())
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
	assert.ErrorContains(t, errs[2], "panicked")
	assert.NoError(t, errs[3])
}

func TestRunAll_CancelledContext(t *testing.T) {
	pool := newPool(1)
	defer pool.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := pool.RunAll(ctx, []Task{func(ctx context.Context) error { return nil }})

	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestSubmit_AfterShutdown(t *testing.T) {
	pool := newPool(2)

	done := make(chan struct{})
	assert.True(t, pool.Submit(func(ctx context.Context) error {
		close(done)
		return nil
	}))
	<-done

	pool.Shutdown()
	assert.False(t, pool.Submit(func(ctx context.Context) error { return nil }))

	errs := pool.RunAll(context.Background(), []Task{func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, errs[0], ErrPoolClosed)
}
