package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(ctx context.Context) *Supervisor {
	return NewSupervisor(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func TestSupervisor_PublishesFailures(t *testing.T) {
	s := newTestSupervisor(context.Background())

	boom := errors.New("upload failed")
	s.Go("pdf-patch", func(ctx context.Context) error { return boom })
	s.Go("ok", func(ctx context.Context) error { return nil })
	s.Wait()

	select {
	case jobErr := <-s.Errors():
		assert.Equal(t, "pdf-patch", jobErr.Job)
		assert.True(t, errors.Is(jobErr, boom))
	default:
		t.Fatal("expected a job error")
	}

	select {
	case jobErr := <-s.Errors():
		t.Fatalf("unexpected job error %v", jobErr)
	default:
	}
}

func TestSupervisor_RecoversPanics(t *testing.T) {
	s := newTestSupervisor(context.Background())

	s.Go("panics", func(ctx context.Context) error { panic("nil map") })
	s.Wait()

	jobErr := <-s.Errors()
	assert.Contains(t, jobErr.Error(), "panic: nil map")
}

func TestSupervisor_AfterDelay(t *testing.T) {
	s := newTestSupervisor(context.Background())

	start := time.Now()
	var ran atomic.Bool
	s.After(30*time.Millisecond, "close", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	s.Wait()

	assert.True(t, ran.Load())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSupervisor_CancelledBaseSkipsDelayedJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestSupervisor(ctx)

	var ran atomic.Bool
	s.After(time.Hour, "never", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	cancel()
	s.Wait()

	assert.False(t, ran.Load())
}

func TestSupervisor_JobGetsDeadline(t *testing.T) {
	s := newTestSupervisor(context.Background())

	var hasDeadline atomic.Bool
	s.Go("deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return nil
	})
	s.Wait()

	require.True(t, hasDeadline.Load())
}
