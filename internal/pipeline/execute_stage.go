package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/process"
)

// ExecutionOutput is the full stdout and stderr of one run. When the binary
// could not be spawned or read, both streams are empty and Err is set.
type ExecutionOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

type ExecuteStage struct {
	Runner process.Runner
	Logger *slog.Logger
}

func NewExecuteStage(runner process.Runner, logger *slog.Logger) *ExecuteStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecuteStage{Runner: runner, Logger: logger}
}

// Run executes the binary to completion inside the workspace. There is no
// timeout; the process lives as long as ctx does.
func (s *ExecuteStage) Run(ctx context.Context, binaryPath, workspacePath string) ExecutionOutput {
	jobID := common.JobIDFromContext(ctx)
	s.Logger.Info("running binary", "job_id", jobID, "binary", binaryPath)

	stdout, stderr, err := s.Runner.Run(ctx, process.Command{Name: binaryPath, Dir: workspacePath})
	code, ran := process.ExitCode(err)
	if !ran {
		s.Logger.Error("binary could not be run", "job_id", jobID, "binary", binaryPath, "error", err)
		return ExecutionOutput{ExitCode: code, Err: fmt.Errorf("%w: %w", common.ErrExecution, err)}
	}

	s.Logger.Info("binary exited",
		"job_id", jobID,
		"exit_code", code,
		"stdout_bytes", len(stdout),
		"stderr_bytes", len(stderr),
	)
	return ExecutionOutput{Stdout: string(stdout), Stderr: string(stderr), ExitCode: code}
}
