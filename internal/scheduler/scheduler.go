package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Job is a long running unit of work, e.g. an autonomous batch run. It must
// return once ctx is canceled.
type Job func(ctx context.Context) error

// Scheduler runs at most one Job in the background and lets callers stop it.
type Scheduler struct {
	log zerolog.Logger

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func New(log zerolog.Logger) *Scheduler {
	done := make(chan struct{})
	close(done)
	return &Scheduler{
		log:  log,
		done: done,
	}
}

// Start returns false when a job is already running.
func (s *Scheduler) Start(parent context.Context, job Job) (bool, error) {
	if job == nil {
		return false, errors.New("job must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false, nil
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.err = nil
	s.running.Store(true)

	done := s.done
	go func() {
		defer close(done)
		defer s.running.Store(false)
		defer cancel()

		s.log.Info().Msg("scheduler job started")
		start := time.Now()

		err := s.safeRun(ctx, job)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		ev := s.log.Info()
		if err != nil && !errors.Is(err, context.Canceled) {
			ev = s.log.Error().Err(err)
		}
		ev.Int64("duration_ms", time.Since(start).Milliseconds()).Msg("scheduler job finished")
	}()

	return true, nil
}

// Stop cancels the running job and waits for it to return. It returns false
// when nothing was running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return false
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.log.Info().Msg("scheduler stopped")
	return true
}

// Cancel asks the running job to stop without waiting for it. It returns
// false when nothing was running.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.cancel()
	s.log.Info().Msg("scheduler job canceled")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Wait blocks until the current job, if any, has returned and reports its
// error.
func (s *Scheduler) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("scheduler job panic recovered")
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job(ctx)
}
