package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/remote-compute/constants"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/entity"
)

// WorkspaceAllocator hands out and reclaims per-job directories.
type WorkspaceAllocator interface {
	Create(jobID string) (string, error)
	Destroy(path string)
}

// Pipeline coordinates workspace allocation, compile, then run for one job.
type Pipeline struct {
	Logger     *slog.Logger
	Workspaces WorkspaceAllocator
	Compile    *CompileStage
	Execute    *ExecuteStage
}

func NewPipeline(logger *slog.Logger, workspaces WorkspaceAllocator, compile *CompileStage, execute *ExecuteStage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Workspaces: workspaces, Compile: compile, Execute: execute}
}

// Run drives job through its states, writing output through em. The
// workspace is removed and the job marked CleanedUp on every path, after the
// last chunk has been handed to em. Only a workspace allocation failure is
// returned; compile and run failures are reported as chunks.
func (p *Pipeline) Run(ctx context.Context, job *entity.Job, em *Emitter) error {
	ctx = common.WithJobID(ctx, job.ID)
	start := time.Now()

	// 1) workspace → must exist before anything touches the compiler
	path, err := p.Workspaces.Create(job.ID)
	if err != nil {
		p.Logger.Error("pipeline.workspace.failed", "job_id", job.ID, "err", err)
		p.transition(job, constants.JobStateFailed)
		p.transition(job, constants.JobStateCleanedUp)
		return err
	}
	job.WorkspacePath = path
	p.transition(job, constants.JobStateWorkspaceReady)

	defer func() {
		p.Workspaces.Destroy(path)
		p.transition(job, constants.JobStateCleanedUp)
		p.Logger.Info("pipeline.done",
			"job_id", job.ID,
			"duration_ms", time.Since(start).Milliseconds(),
			"chunks_sent", em.Sent(),
			"chunks_dropped", em.Dropped(),
		)
	}()

	// 2) compile → summary chunk is always the first thing the caller sees
	p.transition(job, constants.JobStateCompiling)
	outcome := p.Compile.Compile(ctx, path, job.SourceFileName, job.SourceCode, job.CompilerFlags)
	em.CompileSummary(outcome)
	if !outcome.Success {
		p.Logger.Info("pipeline.compile.failed", "job_id", job.ID, "err", outcome.Err)
		p.transition(job, constants.JobStateCompileFailed)
		return nil
	}

	// 3) run → stdout block, then stderr block
	p.transition(job, constants.JobStateRunning)
	out := p.Execute.Run(ctx, outcome.BinaryPath, path)
	em.ExecutionOutput(out)
	// a non-zero exit is the program's own result, not a job failure
	if out.Err != nil {
		p.transition(job, constants.JobStateFailed)
		return nil
	}
	p.transition(job, constants.JobStateCompleted)
	return nil
}

func (p *Pipeline) transition(job *entity.Job, to constants.JobState) {
	from := job.State
	job.State = to
	if to.IsTerminalOutcome() && job.FinishedAt == nil {
		now := time.Now()
		job.FinishedAt = &now
	}
	p.Logger.Debug("pipeline.state", "job_id", job.ID, "from", from, "to", to)
}
