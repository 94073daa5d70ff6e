package blocklib

import (
	"fmt"
	"time"
)

// JobState is the lifecycle of a background job as seen through the
// scheduler capability. Jobs are owned by the scheduler from enqueue until
// they reach a terminal state.
type JobState int

const (
	JobStateUnknown JobState = iota
	JobStateScheduled
	JobStateRunning
	JobStateCompleted
	JobStateFailed
	JobStateCancelled
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateCancelled:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the state satisfies a dependent job.
func (s JobState) Succeeded() bool {
	return s == JobStateCompleted
}

func (s JobState) String() string {
	switch s {
	case JobStateScheduled:
		return "scheduled"
	case JobStateRunning:
		return "running"
	case JobStateCompleted:
		return "completed"
	case JobStateFailed:
		return "failed"
	case JobStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// BackoffPolicy is the linear, bounded-minimum retry policy attached to a
// pipeline job. The first run happens after InitialDelay; retry n waits
// n*Step, never less than MinInterval.
type BackoffPolicy struct {
	InitialDelay time.Duration
	Step         time.Duration
	MinInterval  time.Duration
	MaxRetries   int
}

// Delay returns the wait before running attempt (0 = first run).
func (b BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return b.InitialDelay
	}
	d := time.Duration(attempt) * b.Step
	if d < b.MinInterval {
		d = b.MinInterval
	}
	return d
}

// JobPayload is the input data carried by a pipeline job. Only the fields
// relevant to the job's kind are set.
type JobPayload struct {
	StartTime       int64
	TargetTimestamp Timestamp
	BatchJobIDs     []int64
	Class           ArtifactClass
	Files           []Descriptor
}

// PipelineJob is a unit of background work handed to the job scheduler.
// The tag addresses the job for dedup and cancellation; the kind selects
// the registered handler.
type PipelineJob struct {
	Tag     string
	Kind    string
	Payload JobPayload
	Backoff BackoffPolicy
}

// Job kinds understood by the pipeline runner.
const (
	KindArtifactDownload = "artifact.download"
	KindBatchDownload    = "batch.download"
	KindWatch            = "pipeline.watch"
	KindInstall          = "pipeline.install"
)

// TransportMode selects how a download batch is enqueued.
type TransportMode string

const (
	// TransportPlatform enqueues one fire-and-forget job per file, tracked
	// by generated per-file job identifiers.
	TransportPlatform TransportMode = "platform"
	// TransportCoordinator enqueues a single job owning the batch end to end.
	TransportCoordinator TransportMode = "coordinator"
)

// Pipeline stages, used in tag construction.
const (
	StageBatch   = "batch"
	StageWatch   = "watch"
	StageInstall = "install"
)

// StageTag builds the dedup/cancellation tag for one pipeline stage. Tags
// are distinct per (class, transport, stage) tuple so unrelated pipelines
// can never satisfy each other's dedup gate.
func StageTag(class ArtifactClass, mode TransportMode, stage string) string {
	return fmt.Sprintf("blocklist/%s/%s/%s", class, mode, stage)
}

// JobScheduler is the capability set the orchestration core requires from
// the background job scheduler.
type JobScheduler interface {
	IsScheduled(tag string) bool
	IsRunning(tag string) bool
	Enqueue(job PipelineJob, dependsOn int64) (int64, error)
	CancelByTag(tag string) int
	CancelJob(id int64) bool
	JobStateOf(id int64) (JobState, bool)
}
