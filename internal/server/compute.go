package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
	"github.com/joseph-ayodele/remote-compute/internal/async"
	"github.com/joseph-ayodele/remote-compute/internal/common"
)

// Jobs is the part of the dispatcher the transports need.
type Jobs interface {
	Submit(ctx context.Context, sub async.Submission) (*async.Stream, error)
	Active() int
}

var _ Jobs = (*async.Dispatcher)(nil)

type ComputeService struct {
	computev1.UnimplementedCudaExecutorServer
	jobs   Jobs
	logger *slog.Logger
}

func NewComputeService(jobs Jobs, logger *slog.Logger) *ComputeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComputeService{jobs: jobs, logger: logger}
}

// ExecuteCode implements computev1.CudaExecutorServer.
func (s *ComputeService) ExecuteCode(req *computev1.ComputeRequest, stream computev1.CudaExecutor_ExecuteCodeServer) error {
	js, err := s.jobs.Submit(stream.Context(), async.Submission{
		SourceCode:    req.GetSourceCode(),
		FileName:      req.GetFileName(),
		CompilerFlags: req.GetCompilerFlags(),
	})
	if err != nil {
		s.logger.Warn("execute request rejected", "file_name", req.GetFileName(), "error", err)
		return submitError(err)
	}

	for chunk := range js.Chunks() {
		if err := stream.Send(&computev1.ComputeResponse{Output: chunk.Text, IsError: chunk.IsError}); err != nil {
			// returning cancels the stream context, which releases the job
			s.logger.Debug("client went away", "job_id", js.JobID, "error", err)
			return err
		}
	}

	if err := js.Err(); err != nil {
		s.logger.Error("job failed", "job_id", js.JobID, "error", err)
		return common.InternalErrorf("job %s failed before producing output", js.JobID)
	}
	return nil
}

func submitError(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return common.InvalidArgumentError(err.Error())
	case errors.Is(err, async.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return common.InternalError(err.Error())
	}
}
