package blocklib

import (
	"context"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// PipelineRunner executes the pipeline job kinds. The daemon registers its
// methods as handlers on the job scheduler, keyed by kind, which is also
// what lets persisted jobs resume after a restart.
type PipelineRunner struct {
	fetcher *Fetcher
	layout  *Layout
	store   TimestampStore
	status  *StatusPublisher
	sched   JobScheduler
	log     logger.Logger
}

// NewPipelineRunner wires a runner over its collaborators.
func NewPipelineRunner(fetcher *Fetcher, layout *Layout, store TimestampStore, status *StatusPublisher, sched JobScheduler, log logger.Logger) *PipelineRunner {
	return &PipelineRunner{
		fetcher: fetcher,
		layout:  layout,
		store:   store,
		status:  status,
		sched:   sched,
		log:     log,
	}
}

// RunArtifactDownload handles KindArtifactDownload: fetch the single file
// the platform transport bound to this job.
func (r *PipelineRunner) RunArtifactDownload(ctx context.Context, job PipelineJob) error {
	p := job.Payload
	if len(p.Files) == 0 {
		return ErrNoDescriptors
	}
	return r.fetcher.Fetch(ctx, p.Class, p.TargetTimestamp, p.Files[0])
}

// RunBatchDownload handles KindBatchDownload: the coordinator transport's
// single job fetches every file of the batch in order.
func (r *PipelineRunner) RunBatchDownload(ctx context.Context, job PipelineJob) error {
	p := job.Payload
	if len(p.Files) == 0 {
		return ErrNoDescriptors
	}
	for _, d := range p.Files {
		if err := r.fetcher.Fetch(ctx, p.Class, p.TargetTimestamp, d); err != nil {
			return err
		}
	}
	return nil
}

// RunWatch handles KindWatch: inspect every batch job. While any is still
// pending the stage reports ErrBatchIncomplete and is retried under its
// backoff; a failed or cancelled batch job fails the stage permanently so
// the dependent install job never runs.
func (r *PipelineRunner) RunWatch(ctx context.Context, job PipelineJob) error {
	pending := false
	for _, id := range job.Payload.BatchJobIDs {
		state, ok := r.sched.JobStateOf(id)
		if !ok {
			r.log.Error("watch %s: batch job %d vanished", job.Payload.Class, id)
			return ErrBatchFailed
		}
		switch {
		case state == JobStateFailed || state == JobStateCancelled:
			return ErrBatchFailed
		case !state.Terminal():
			pending = true
		}
	}
	if pending {
		return ErrBatchIncomplete
	}
	return nil
}

// RunInstall handles KindInstall: promote the namespace into the canonical
// location, record the installed timestamp and publish the terminal
// success. Runs only after the watch stage completed.
func (r *PipelineRunner) RunInstall(ctx context.Context, job PipelineJob) error {
	p := job.Payload
	if err := r.layout.Promote(p.Class, p.TargetTimestamp); err != nil {
		return err
	}
	if err := r.store.SetInstalled(p.Class, p.TargetTimestamp); err != nil {
		return err
	}
	r.log.Info("install %s: now at %s", p.Class, p.TargetTimestamp)
	r.status.Publish(OutcomeSuccess)
	return nil
}
