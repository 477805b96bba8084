package async

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/remote-compute/constants"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/entity"
	"github.com/joseph-ayodele/remote-compute/internal/pipeline"
)

// Submission is what a caller hands over; the dispatcher turns it into a Job.
type Submission struct {
	SourceCode    string
	FileName      string
	CompilerFlags []string
}

// Validate rejects submissions that could never be compiled or that would
// escape the workspace.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.SourceCode) == "" {
		return fmt.Errorf("%w: source_code is required", common.ErrInvalidInput)
	}
	if !constants.ValidSourceFileName(s.FileName) {
		return fmt.Errorf("%w: file_name %q must be a plain file name", common.ErrInvalidInput, s.FileName)
	}
	return nil
}

// JobRunner executes one job to completion, cleanup included.
type JobRunner interface {
	Run(ctx context.Context, job *entity.Job, em *pipeline.Emitter) error
}

var _ JobRunner = (*pipeline.Pipeline)(nil)
