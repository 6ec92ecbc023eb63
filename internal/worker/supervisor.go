// Package worker runs detached jobs that outlive the request that started them.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobError is a failed background job.
type JobError struct {
	Job string
	Err error
}

func (e JobError) Error() string {
	return e.Job + ": " + e.Err.Error()
}

func (e JobError) Unwrap() error {
	return e.Err
}

// Supervisor owns background jobs. Failures are logged and published on Errors, never
// returned to the caller that scheduled the job.
type Supervisor struct {
	log     *slog.Logger
	base    context.Context
	timeout time.Duration

	wg     sync.WaitGroup
	errors chan JobError
}

func NewSupervisor(base context.Context, log *slog.Logger, timeout time.Duration) *Supervisor {
	return &Supervisor{
		log:     log,
		base:    base,
		timeout: timeout,
		errors:  make(chan JobError, 64),
	}
}

// Go starts fn now.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.After(0, name, fn)
}

// After starts fn once delay has passed. A cancelled base context skips the job.
func (s *Supervisor) After(delay time.Duration, name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-s.base.Done():
				t.Stop()
				return
			}
		}

		s.run(name, fn)
	}()
}

func (s *Supervisor) run(name string, fn func(ctx context.Context) error) {
	const op = "worker.Supervisor.run"

	ctx := s.base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.base, s.timeout)
		defer cancel()
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn(ctx)
	}()

	if err == nil {
		return
	}

	s.log.With(
		slog.String("op", op),
		slog.String("job", name),
		slog.String("error", err.Error()),
	).Error("background job failed")

	select {
	case s.errors <- JobError{Job: name, Err: err}:
	default:
	}
}

// Errors reports failed jobs. The channel is buffered; failures are dropped when nobody
// drains it.
func (s *Supervisor) Errors() <-chan JobError {
	return s.errors
}

// Wait blocks until every scheduled job has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
