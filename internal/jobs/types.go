package jobs

import (
	"context"
	"time"

	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

// HandlerFunc executes one job. A nil return completes the job; a
// retryable error requeues it under the job's backoff policy; any other
// error fails it permanently.
type HandlerFunc func(ctx context.Context, job blocklib.PipelineJob) error

// TerminalFunc is invoked after a job reaches a terminal state. It runs
// outside the scheduler lock.
type TerminalFunc func(job blocklib.PipelineJob, state blocklib.JobState)

// Record is the persisted lifecycle of one job. Records are kept after the
// job terminates so dependents and watchers can still resolve its outcome;
// Flush prunes terminal records.
type Record struct {
	ID        int64
	Job       blocklib.PipelineJob
	State     blocklib.JobState
	Attempts  int
	DependsOn int64
	ReadyAt   time.Time
	LastError string
	// CancelRequested is set when a running job is cancelled; finish
	// turns the record Cancelled instead of requeueing it.
	CancelRequested bool
}
