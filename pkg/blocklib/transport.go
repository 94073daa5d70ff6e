package blocklib

import (
	"fmt"
	"time"
)

// BatchEnqueuer hands a download batch to the job scheduler. The two
// variants differ only in how the batch is split into jobs; gating, purging
// and chaining are identical from the orchestrator's point of view.
type BatchEnqueuer interface {
	Mode() TransportMode
	// EnqueueBatch schedules the batch and returns the job identifiers the
	// watch stage must observe.
	EnqueueBatch(batch DownloadBatch) ([]int64, error)
}

// PlatformEnqueuer enqueues one job per file in the batch. The jobs are
// fire and forget: they share the batch stage tag, so pipeline
// cancellation addresses every stage by tag.
type PlatformEnqueuer struct {
	sched   JobScheduler
	backoff BackoffPolicy
}

// NewPlatformEnqueuer creates the per-file transport.
func NewPlatformEnqueuer(sched JobScheduler, backoff BackoffPolicy) *PlatformEnqueuer {
	return &PlatformEnqueuer{sched: sched, backoff: backoff}
}

// Mode implements BatchEnqueuer.
func (e *PlatformEnqueuer) Mode() TransportMode {
	return TransportPlatform
}

// EnqueueBatch implements BatchEnqueuer.
func (e *PlatformEnqueuer) EnqueueBatch(batch DownloadBatch) ([]int64, error) {
	now := time.Now().UnixMilli()
	ids := make([]int64, 0, len(batch.Files))
	for _, file := range batch.Files {
		id, err := e.sched.Enqueue(PipelineJob{
			Tag:  StageTag(batch.Class, TransportPlatform, StageBatch),
			Kind: KindArtifactDownload,
			Payload: JobPayload{
				StartTime:       now,
				TargetTimestamp: batch.Target,
				Class:           batch.Class,
				Files:           []Descriptor{file},
			},
			Backoff: e.backoff,
		}, 0)
		if err != nil {
			return ids, fmt.Errorf("enqueue %s: %w", file.FileName, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CoordinatorEnqueuer enqueues a single job that owns the entire batch end
// to end. Cancelling the pipeline cancels this one tag; the watch stage
// then observes the cancellation and terminates the chain.
type CoordinatorEnqueuer struct {
	sched   JobScheduler
	backoff BackoffPolicy
}

// NewCoordinatorEnqueuer creates the single-job transport.
func NewCoordinatorEnqueuer(sched JobScheduler, backoff BackoffPolicy) *CoordinatorEnqueuer {
	return &CoordinatorEnqueuer{sched: sched, backoff: backoff}
}

// Mode implements BatchEnqueuer.
func (e *CoordinatorEnqueuer) Mode() TransportMode {
	return TransportCoordinator
}

// EnqueueBatch implements BatchEnqueuer.
func (e *CoordinatorEnqueuer) EnqueueBatch(batch DownloadBatch) ([]int64, error) {
	id, err := e.sched.Enqueue(PipelineJob{
		Tag:  StageTag(batch.Class, TransportCoordinator, StageBatch),
		Kind: KindBatchDownload,
		Payload: JobPayload{
			StartTime:       time.Now().UnixMilli(),
			TargetTimestamp: batch.Target,
			Class:           batch.Class,
			Files:           batch.Files,
		},
		Backoff: e.backoff,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("enqueue batch: %w", err)
	}
	return []int64{id}, nil
}

var (
	_ BatchEnqueuer = (*PlatformEnqueuer)(nil)
	_ BatchEnqueuer = (*CoordinatorEnqueuer)(nil)
)
