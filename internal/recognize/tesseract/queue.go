package tesseract

import (
	"context"
	"log"
	"sync"

	"lifedash/internal/domain"
	"lifedash/internal/port"
)

// Queue serializes access to a shared Engine. The underlying binary run is
// not safe for concurrent use, so a single worker goroutine consumes jobs
// in FIFO order: the queue itself is the lock. A job failure never stops
// the worker; the next job starts unconditionally after the previous one
// settles.
//
// Queue implements port.TextRecognizer.
type Queue struct {
	engine *Engine
	jobs   chan *job
	once   sync.Once
}

type job struct {
	ctx      context.Context
	input    port.RecognizeInput
	progress func(pct int)
	done     chan jobResult
}

type jobResult struct {
	result *domain.RecognitionResult
	err    error
}

// NewQueue creates a Queue over the given engine. The worker goroutine is
// started lazily on first use and lives for the life of the process.
func NewQueue(engine *Engine) *Queue {
	return &Queue{
		engine: engine,
		jobs:   make(chan *job, 64),
	}
}

// Recognize enqueues a recognition job and blocks until it settles or ctx
// is canceled. Progress callbacks are rounded down to 5% steps and a final
// 100% is always delivered when the job settles, success or failure.
func (q *Queue) Recognize(ctx context.Context, input port.RecognizeInput) (*domain.RecognitionResult, error) {
	q.once.Do(func() {
		go q.worker()
		log.Printf("tesseract.Queue: worker started")
	})

	j := &job{
		ctx:      ctx,
		input:    input,
		progress: newProgressReporter(input.OnProgress),
		done:     make(chan jobResult, 1),
	}

	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-j.done:
		return res.result, res.err
	case <-ctx.Done():
		// The job stays queued and will still run (and settle) in order;
		// only this caller stops waiting.
		return nil, ctx.Err()
	}
}

// worker processes jobs one at a time. At most one recognition is ever in
// flight against the engine.
func (q *Queue) worker() {
	for j := range q.jobs {
		var res jobResult
		if err := j.ctx.Err(); err != nil {
			res = jobResult{err: err}
		} else {
			result, err := q.engine.recognize(j.ctx, j.input, j.progress)
			res = jobResult{result: result, err: err}
		}
		j.progress(100)
		j.done <- res
	}
}

// newProgressReporter wraps an optional callback so that updates arrive
// rounded down to 5% steps, strictly increasing, with 100 always allowed
// through. A nil callback yields a no-op reporter.
func newProgressReporter(cb func(pct int)) func(pct int) {
	if cb == nil {
		return func(int) {}
	}
	last := -1
	return func(pct int) {
		if pct >= 100 {
			if last < 100 {
				last = 100
				cb(100)
			}
			return
		}
		stepped := pct - pct%5
		if stepped <= last {
			return
		}
		last = stepped
		cb(stepped)
	}
}
