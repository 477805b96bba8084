package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/remote-compute/constants"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/entity"
)

// Emitter merges stage events into one ordered chunk sequence on a bounded
// channel. A send blocks while the consumer is alive; once the delivery
// context is done every further chunk is dropped and the job carries on.
type Emitter struct {
	ctx    context.Context
	ch     chan<- entity.OutputChunk
	logger *slog.Logger

	sent    int
	dropped int
	gone    bool
}

// NewEmitter delivers into ch until ctx is done. The caller owns ch and closes it.
func NewEmitter(ctx context.Context, ch chan<- entity.OutputChunk, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{ctx: ctx, ch: ch, logger: logger}
}

// Emit enqueues one chunk.
func (e *Emitter) Emit(text string, isError bool) {
	if e.gone {
		e.dropped++
		return
	}
	select {
	case e.ch <- entity.OutputChunk{Text: text, IsError: isError}:
		e.sent++
	case <-e.ctx.Done():
		e.gone = true
		e.dropped++
		e.logger.Debug("consumer gone, dropping remaining output",
			"job_id", common.JobIDFromContext(e.ctx),
			"err", fmt.Errorf("%w: %w", common.ErrDelivery, e.ctx.Err()),
		)
	}
}

// CompileSummary emits the compile outcome chunk, followed by any relayed
// compiler diagnostics. It is always the first thing a job emits.
func (e *Emitter) CompileSummary(o CompileOutcome) {
	if o.Success {
		e.Emit(constants.CompileSucceededMessage, false)
	} else {
		e.Emit(constants.CompileFailedMessage, true)
	}
	for _, line := range o.Diagnostics {
		e.Emit(line, true)
	}
}

// ExecutionOutput emits stdout then stderr. Empty streams produce no chunk.
func (e *Emitter) ExecutionOutput(out ExecutionOutput) {
	if out.Stdout != "" {
		e.Emit(trimNewline(out.Stdout), false)
	}
	if out.Stderr != "" {
		e.Emit(trimNewline(out.Stderr), true)
	}
}

// Sent returns how many chunks reached the channel.
func (e *Emitter) Sent() int { return e.sent }

// Dropped returns how many chunks were discarded after the consumer left.
func (e *Emitter) Dropped() int { return e.dropped }

// trimNewline drops one trailing line ending; clients print chunks line-wise.
func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
