package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/remote-compute/constants"
)

// Job is one compile-and-run request and its lifecycle on the host.
// It is owned and mutated by a single goroutine.
type Job struct {
	ID             string             `json:"id"`
	SourceFileName string             `json:"source_file_name"`
	SourceCode     string             `json:"-"`
	CompilerFlags  []string           `json:"compiler_flags"`
	WorkspacePath  string             `json:"workspace_path,omitempty"`
	State          constants.JobState `json:"state"`
	SubmittedAt    time.Time          `json:"submitted_at"`
	FinishedAt     *time.Time         `json:"finished_at,omitempty"`
}

// NewJob assigns a fresh id. Flags are copied so the caller's slice can be reused.
func NewJob(sourceFileName, sourceCode string, flags []string) *Job {
	return &Job{
		ID:             uuid.NewString(),
		SourceFileName: sourceFileName,
		SourceCode:     sourceCode,
		CompilerFlags:  append([]string(nil), flags...),
		State:          constants.JobStateCreated,
		SubmittedAt:    time.Now().UTC(),
	}
}
