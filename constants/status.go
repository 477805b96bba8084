package constants

// JobState is the lifecycle state of a single compile-and-run job.
type JobState string

// Stable values; these strings appear in logs.
const (
	JobStateCreated        JobState = "CREATED"
	JobStateWorkspaceReady JobState = "WORKSPACE_READY"
	JobStateCompiling      JobState = "COMPILING"
	JobStateCompileFailed  JobState = "COMPILE_FAILED"
	JobStateRunning        JobState = "RUNNING"
	JobStateCompleted      JobState = "COMPLETED"
	JobStateFailed         JobState = "FAILED"    // internal or execution failure
	JobStateCleanedUp      JobState = "CLEANED_UP" // terminal; workspace removed
)

// IsTerminalOutcome reports whether s ends the compile/run state machine.
// CleanedUp always follows one of these.
func (s JobState) IsTerminalOutcome() bool {
	switch s {
	case JobStateCompileFailed, JobStateCompleted, JobStateFailed:
		return true
	}
	return false
}
