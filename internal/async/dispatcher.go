package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/entity"
	"github.com/joseph-ayodele/remote-compute/internal/pipeline"
)

// ErrClosed is returned by Submit once Shutdown has started.
var ErrClosed = errors.New("dispatcher is shutting down")

// Stream is the caller's handle on one running job.
type Stream struct {
	JobID string

	ch   chan entity.OutputChunk
	done chan struct{}
	err  error
}

// Chunks yields output in order. It is closed after the workspace is removed.
func (s *Stream) Chunks() <-chan entity.OutputChunk { return s.ch }

// Wait blocks until the job is cleaned up and returns its internal failure, if any.
func (s *Stream) Wait() error {
	<-s.done
	return s.err
}

// Err returns the job's internal failure. It must only be called after
// Chunks has been drained to closure.
func (s *Stream) Err() error { return s.err }

// Dispatcher starts one goroutine per accepted job and never waits on it.
type Dispatcher struct {
	runner           JobRunner
	logger           *slog.Logger
	chunkBuffer      int
	killOnDisconnect bool

	wg     sync.WaitGroup
	active atomic.Int64

	mu     sync.Mutex
	closed bool
}

type Option func(*Dispatcher)

func WithChunkBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.chunkBuffer = n
		}
	}
}

// WithKillOnDisconnect ties child processes to the submitter's context.
func WithKillOnDisconnect(kill bool) Option {
	return func(d *Dispatcher) {
		d.killOnDisconnect = kill
	}
}

func NewDispatcher(runner JobRunner, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		runner:           runner,
		logger:           logger,
		chunkBuffer:      100,
		killOnDisconnect: true,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Submit validates sub, starts its job and returns immediately. ctx is the
// submitter's lifetime: when it ends, undelivered chunks are dropped.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) (*Stream, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("cannot submit: dispatcher is shutting down", "file_name", sub.FileName)
		return nil, ErrClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	job := entity.NewJob(sub.FileName, sub.SourceCode, sub.CompilerFlags)
	s := &Stream{
		JobID: job.ID,
		ch:    make(chan entity.OutputChunk, d.chunkBuffer),
		done:  make(chan struct{}),
	}

	deliverCtx := common.WithJobID(ctx, job.ID)
	runCtx := deliverCtx
	if !d.killOnDisconnect {
		runCtx = context.WithoutCancel(deliverCtx)
	}

	d.logger.Info("job accepted",
		"job_id", job.ID,
		"file_name", job.SourceFileName,
		"flags", len(job.CompilerFlags),
		"source_bytes", len(job.SourceCode),
	)
	d.active.Add(1)
	go d.run(runCtx, job, s, pipeline.NewEmitter(deliverCtx, s.ch, d.logger))
	return s, nil
}

func (d *Dispatcher) run(ctx context.Context, job *entity.Job, s *Stream, em *pipeline.Emitter) {
	defer d.wg.Done()
	defer close(s.done)
	defer d.active.Add(-1)
	defer close(s.ch)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("job panicked", "job_id", job.ID, "panic", r)
			s.err = common.NewAppError("INTERNAL", "job aborted", fmt.Errorf("%w: panic: %v", common.ErrInternal, r))
		}
	}()

	if err := d.runner.Run(ctx, job, em); err != nil {
		d.logger.Error("job failed", "job_id", job.ID, "state", job.State, "error", err)
		s.err = err
		return
	}
	d.logger.Info("job finished", "job_id", job.ID, "state", job.State)
}

// Active returns the number of jobs that have not finished cleanup.
func (d *Dispatcher) Active() int { return int(d.active.Load()) }

// Shutdown stops accepting jobs and waits for running ones until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); d.wg.Wait() }()

	select {
	case <-ctx.Done():
		d.logger.Warn("shutdown interrupted by context", "active_jobs", d.Active())
	case <-done:
		d.logger.Info("jobs drained, shutdown complete")
	}
}
