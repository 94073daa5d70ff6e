package blocklib

import "time"

// PipelineChain builds the two-stage post-download sequence as a
// dependency-ordered pair of jobs: the watch stage observes completion of
// every batch job, and the install stage runs only after the watch stage
// completes. The scheduler's predecessor-before-successor guarantee is what
// keeps the install stage from ever seeing a partially downloaded batch.
type PipelineChain struct {
	sched          JobScheduler
	mode           TransportMode
	watchBackoff   BackoffPolicy
	installBackoff BackoffPolicy
}

// NewPipelineChain creates a chain builder for the given transport mode.
func NewPipelineChain(sched JobScheduler, mode TransportMode, watchBackoff, installBackoff BackoffPolicy) *PipelineChain {
	return &PipelineChain{
		sched:          sched,
		mode:           mode,
		watchBackoff:   watchBackoff,
		installBackoff: installBackoff,
	}
}

// Mode returns the transport mode the chain tags its stages with.
func (c *PipelineChain) Mode() TransportMode {
	return c.mode
}

// Build enqueues the watch and install jobs for a batch. batchIDs are the
// scheduler ids returned by the batch enqueuer; the install job depends on
// the watch job and carries the target timestamp so it knows which
// namespace to promote.
func (c *PipelineChain) Build(class ArtifactClass, target Timestamp, batchIDs []int64) (watchID, installID int64, err error) {
	now := time.Now().UnixMilli()
	watchID, err = c.sched.Enqueue(PipelineJob{
		Tag:  StageTag(class, c.mode, StageWatch),
		Kind: KindWatch,
		Payload: JobPayload{
			StartTime:       now,
			TargetTimestamp: target,
			BatchJobIDs:     batchIDs,
			Class:           class,
		},
		Backoff: c.watchBackoff,
	}, 0)
	if err != nil {
		return 0, 0, err
	}
	installID, err = c.sched.Enqueue(PipelineJob{
		Tag:  StageTag(class, c.mode, StageInstall),
		Kind: KindInstall,
		Payload: JobPayload{
			StartTime:       now,
			TargetTimestamp: target,
			Class:           class,
		},
		Backoff: c.installBackoff,
	}, watchID)
	if err != nil {
		return watchID, 0, err
	}
	return watchID, installID, nil
}
