package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/remote-compute/internal/common"
)

// maxLineBytes bounds a single streamed line.
const maxLineBytes = 1 << 20

// Command describes one child process.
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// LineFunc receives one line of output. isStderr reports which stream it came from.
// Calls are serialized.
type LineFunc func(line string, isStderr bool)

// Runner lets us stub external commands in tests.
type Runner interface {
	// Run waits for the process to exit and returns everything it wrote.
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
	// Stream delivers output line by line as it is produced.
	Stream(ctx context.Context, cmd Command, onLine LineFunc) error
}

// ExitCode returns the exit status carried by err and whether the process
// actually ran. A nil error is exit status 0.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return -1, false
}

type execRunner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner(logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

func (r execRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// give the child a moment to exit on its own after a kill request
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func (r execRunner) Run(ctx context.Context, c Command) ([]byte, []byte, error) {
	start := time.Now()
	jobID := common.JobIDFromContext(ctx)
	r.logger.Debug("running command", "job_id", jobID, "cmd_line", c.String(), "dir", c.Dir)

	cmd := r.command(ctx, c)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error("exec failed",
			"job_id", jobID,
			"cmd", c.Name,
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10), // cap at 8KB
		)
	} else {
		r.logger.Debug("exec ok",
			"job_id", jobID,
			"cmd", c.Name,
			"args", strings.Join(c.Args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func (r execRunner) Stream(ctx context.Context, c Command, onLine LineFunc) error {
	start := time.Now()
	jobID := common.JobIDFromContext(ctx)
	r.logger.Debug("streaming command", "job_id", jobID, "cmd_line", c.String(), "dir", c.Dir)

	cmd := r.command(ctx, c)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return common.WrapError(err, "stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return common.WrapError(err, "stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		r.logger.Error("exec failed to start", "job_id", jobID, "cmd", c.Name, "error", err)
		return err
	}

	var mu sync.Mutex
	deliver := func(line string, isStderr bool) {
		mu.Lock()
		defer mu.Unlock()
		onLine(line, isStderr)
	}

	// pipes must be drained before Wait closes them
	var g errgroup.Group
	g.Go(func() error { return scanLines(stdout, false, deliver) })
	g.Go(func() error { return scanLines(stderr, true, deliver) })
	readErr := g.Wait()

	err = cmd.Wait()
	dur := time.Since(start)
	if err == nil {
		err = common.WrapError(readErr, "read output")
	}

	if err != nil {
		r.logger.Error("exec failed", "job_id", jobID, "cmd", c.Name, "duration_ms", dur.Milliseconds(), "error", err)
	} else {
		r.logger.Debug("exec ok", "job_id", jobID, "cmd", c.Name, "duration_ms", dur.Milliseconds())
	}
	return err
}

func scanLines(rd io.Reader, isStderr bool, deliver func(string, bool)) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for sc.Scan() {
		deliver(sc.Text(), isStderr)
	}
	if err := sc.Err(); err != nil {
		// keep the pipe flowing so the child does not block on a full buffer
		_, _ = io.Copy(io.Discard, rd)
		return err
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
