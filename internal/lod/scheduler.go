package lod

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Scheduler runs blocking work on worker goroutines and hands the results
// back to the render goroutine.
//
// Work functions run concurrently, at most maxConcurrent at a time. Each one
// returns a continuation that is queued and later executed by RunPending (or
// RunNext) on the goroutine that owns the scene. Continuations are the only
// place where caches are mutated.
type Scheduler struct {
	sem    *semaphore.Weighted
	queue  chan func()
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. maxConcurrent < 1 is treated as 1.
func NewScheduler(maxConcurrent int) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scheduler{
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		queue:  make(chan func(), 64),
		closed: make(chan struct{}),
	}
}

// Go runs work on a worker goroutine once a slot is free. The continuation
// returned by work is queued for the render goroutine. If ctx is cancelled
// before a slot frees up, onCancel is queued instead.
func (s *Scheduler) Go(ctx context.Context, work func(context.Context) func(), onCancel func(error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.post(func() { onCancel(err) })
			return
		}
		cont := work(ctx)
		s.sem.Release(1)

		if cont != nil {
			s.post(cont)
		}
	}()
}

func (s *Scheduler) post(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.closed:
	}
}

// RunPending executes every queued continuation without blocking and
// returns how many ran. Call it once per frame.
func (s *Scheduler) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-s.queue:
			fn()
			n++
		default:
			return n
		}
	}
}

// RunNext blocks until one continuation is available, runs it, and returns.
func (s *Scheduler) RunNext(ctx context.Context) error {
	select {
	case fn := <-s.queue:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return context.Canceled
	}
}

// Await runs continuations until f settles, then returns its result.
// It must be called on the render goroutine.
func (s *Scheduler) Await(ctx context.Context, f *Future) (*Texture, error) {
	for !f.Settled() {
		if err := s.RunNext(ctx); err != nil {
			return nil, err
		}
	}
	return f.Result()
}

// Close stops accepting continuations. Results that arrive after Close are
// dropped.
func (s *Scheduler) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Wait blocks until every worker goroutine has returned. Cancel the contexts
// of in-flight work (Cache.Dispose does) before waiting.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
