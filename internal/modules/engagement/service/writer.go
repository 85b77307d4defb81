package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrWriterClosed = errors.New("engagement writer closed")

// Job is one unit of background persistence.
type Job func(ctx context.Context) error

// Result reports how a submitted job ended.
type Result struct {
	done chan struct{}
	err  error
}

func newResult() *Result { return &Result{done: make(chan struct{})} }

func (r *Result) finish(err error) {
	r.err = err
	close(r.done)
}

func (r *Result) Done() <-chan struct{} { return r.done }

// Wait blocks until the job ran or ctx ends, and returns the job's error.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type pending struct {
	name string
	job  Job
	res  *Result
}

// Writer runs persistence jobs one at a time, in submission order, on its own
// goroutine. Submit never blocks. Failures are logged and recorded on the
// job's Result; nothing is retried.
type Writer struct {
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	queue  []pending
	closed bool

	wake    chan struct{}
	stopped chan struct{}
}

func NewWriter(log *slog.Logger, jobTimeout time.Duration) *Writer {
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Second
	}
	w := &Writer{
		log:     log.With(slog.String("component", "engagement_writer")),
		timeout: jobTimeout,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) Submit(name string, job Job) *Result {
	res := newResult()
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		res.finish(ErrWriterClosed)
		return res
	}
	w.queue = append(w.queue, pending{name: name, job: job, res: res})
	w.mu.Unlock()
	w.signal()
	return res
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to end.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	left := len(w.queue)
	w.mu.Unlock()
	w.signal()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		w.log.Warn("engagement_writer_drain_incomplete", slog.Int("queued", left))
		return ctx.Err()
	}
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return
			}
			<-w.wake
			continue
		}
		next := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()
		w.exec(next)
	}
}

func (w *Writer) exec(p pending) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = fmt.Errorf("job panicked: %v", v)
			}
		}()
		return p.job(ctx)
	}()
	if err != nil {
		w.log.Error("engagement_write_failed", slog.String("job", p.name), slog.Any("error", err))
	}
	p.res.finish(err)
}
