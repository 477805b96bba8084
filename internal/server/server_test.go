package server_test

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/remote-compute/internal/async"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/entity"
	"github.com/joseph-ayodele/remote-compute/internal/pipeline"
)

// stubRunner implements async.JobRunner.
type stubRunner struct {
	runFn func(ctx context.Context, job *entity.Job, em *pipeline.Emitter) error
}

var _ async.JobRunner = (*stubRunner)(nil)

func (s *stubRunner) Run(ctx context.Context, job *entity.Job, em *pipeline.Emitter) error {
	if s.runFn != nil {
		return s.runFn(ctx, job, em)
	}
	return nil
}

// scriptedRunner plays a successful compile followed by program output.
func scriptedRunner(stdout, stderr string) *stubRunner {
	return &stubRunner{runFn: func(_ context.Context, _ *entity.Job, em *pipeline.Emitter) error {
		em.CompileSummary(pipeline.CompileOutcome{Success: true})
		em.ExecutionOutput(pipeline.ExecutionOutput{Stdout: stdout, Stderr: stderr})
		return nil
	}}
}

func failingCompileRunner() *stubRunner {
	return &stubRunner{runFn: func(_ context.Context, _ *entity.Job, em *pipeline.Emitter) error {
		em.CompileSummary(pipeline.CompileOutcome{})
		return nil
	}}
}

func workspaceFailureRunner() *stubRunner {
	return &stubRunner{runFn: func(context.Context, *entity.Job, *pipeline.Emitter) error {
		return common.WorkspaceError("create workspace", errors.New("no space left on device"))
	}}
}
