package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/remote-compute/constants"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/process"
)

// CompileOutcome is either a success carrying the binary path or a failure.
// Spawn errors and non-zero exits are both failures; Err keeps the cause for logs.
type CompileOutcome struct {
	Success     bool
	BinaryPath  string
	Diagnostics []string // only populated when diagnostics are relayed
	Err         error
}

type CompileStage struct {
	Runner           process.Runner
	Compiler         string
	RelayDiagnostics bool
	Logger           *slog.Logger
}

func NewCompileStage(runner process.Runner, compiler string, relayDiagnostics bool, logger *slog.Logger) *CompileStage {
	if logger == nil {
		logger = slog.Default()
	}
	if compiler == "" {
		compiler = "nvcc"
	}
	return &CompileStage{Runner: runner, Compiler: compiler, RelayDiagnostics: relayDiagnostics, Logger: logger}
}

// Compile writes the source into the workspace and invokes the compiler as
// `<compiler> <source> <flags...> -o <binary>` with the workspace as working
// directory. Flags are passed through verbatim and in order.
func (s *CompileStage) Compile(ctx context.Context, workspacePath, sourceFileName, sourceCode string, flags []string) CompileOutcome {
	jobID := common.JobIDFromContext(ctx)
	name := filepath.Base(sourceFileName)
	sourcePath := filepath.Join(workspacePath, name)
	if err := os.WriteFile(sourcePath, []byte(sourceCode), 0o644); err != nil {
		s.Logger.Error("failed to write source", "job_id", jobID, "path", sourcePath, "error", err)
		return CompileOutcome{Err: fmt.Errorf("%w: write source: %w", common.ErrCompile, err)}
	}

	binaryPath := filepath.Join(workspacePath, constants.BinaryNameFor(name))
	args := make([]string, 0, len(flags)+3)
	args = append(args, name)
	args = append(args, flags...)
	args = append(args, "-o", binaryPath)
	cmd := process.Command{Name: s.Compiler, Args: args, Dir: workspacePath}

	s.Logger.Info("compiling", "job_id", jobID, "compiler", s.Compiler, "source", name, "flags", len(flags))

	var diagnostics []string
	var err error
	if s.RelayDiagnostics {
		err = s.Runner.Stream(ctx, cmd, func(line string, _ bool) {
			diagnostics = append(diagnostics, line)
		})
	} else {
		var stderr []byte
		_, stderr, err = s.Runner.Run(ctx, cmd)
		if len(stderr) > 0 {
			s.Logger.Debug("compiler diagnostics discarded", "job_id", jobID, "bytes", len(stderr))
		}
	}

	if err != nil {
		if code, ran := process.ExitCode(err); ran {
			s.Logger.Info("compilation failed", "job_id", jobID, "exit_code", code)
		} else {
			s.Logger.Error("compiler could not be started", "job_id", jobID, "compiler", s.Compiler, "error", err)
		}
		return CompileOutcome{Diagnostics: diagnostics, Err: fmt.Errorf("%w: %w", common.ErrCompile, err)}
	}

	s.Logger.Info("compilation succeeded", "job_id", jobID, "binary", binaryPath)
	return CompileOutcome{Success: true, BinaryPath: binaryPath, Diagnostics: diagnostics}
}
