package blocklib

import (
	"sync"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// DownloadOrchestrator starts blocklist download pipelines. A pipeline runs
// at most once per artifact class at a time: the dedup gate consults the
// scheduler for any non-terminal job carrying one of the class's stage tags
// and refuses to start a second pipeline while one is in flight. Operations
// on distinct classes are independent and may run concurrently.
type DownloadOrchestrator struct {
	store       TimestampStore
	enqueuer    BatchEnqueuer
	chain       *PipelineChain
	purger      *Purger
	status      *StatusPublisher
	descriptors map[ArtifactClass][]Descriptor
	log         logger.Logger

	mu    sync.Mutex
	locks map[ArtifactClass]*sync.Mutex
}

// NewDownloadOrchestrator wires an orchestrator. descriptors maps each class
// to the set of files a batch for that class downloads.
func NewDownloadOrchestrator(
	store TimestampStore,
	enqueuer BatchEnqueuer,
	chain *PipelineChain,
	purger *Purger,
	status *StatusPublisher,
	descriptors map[ArtifactClass][]Descriptor,
	log logger.Logger,
) *DownloadOrchestrator {
	return &DownloadOrchestrator{
		store:       store,
		enqueuer:    enqueuer,
		chain:       chain,
		purger:      purger,
		status:      status,
		descriptors: descriptors,
		log:         log,
		locks:       make(map[ArtifactClass]*sync.Mutex),
	}
}

// classLock returns the mutex serializing pipeline starts for one class.
func (o *DownloadOrchestrator) classLock(class ArtifactClass) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[class]
	if !ok {
		l = &sync.Mutex{}
		o.locks[class] = l
	}
	return l
}

// DownloadLocal starts a pipeline for the local artifact class. currentTs is
// the caller's view of the installed timestamp; force starts a re-download
// of currentTs even when nothing newer is known. Returns whether a pipeline
// was started.
func (o *DownloadOrchestrator) DownloadLocal(currentTs Timestamp, force bool) bool {
	return o.Download(ClassLocal, currentTs, force)
}

// DownloadRemote is DownloadLocal for the remote artifact class.
func (o *DownloadOrchestrator) DownloadRemote(currentTs Timestamp, force bool) bool {
	return o.Download(ClassRemote, currentTs, force)
}

// Download starts the download pipeline for class if the dedup gate allows
// it and a usable target timestamp exists. The decision and the enqueue are
// made under the class lock, so two concurrent calls for the same class
// start at most one pipeline.
func (o *DownloadOrchestrator) Download(class ArtifactClass, currentTs Timestamp, force bool) bool {
	lock := o.classLock(class)
	lock.Lock()
	defer lock.Unlock()

	sched := o.chain.sched
	for _, tag := range o.gateTags(class) {
		if sched.IsScheduled(tag) || sched.IsRunning(tag) {
			o.log.Info("download %s: pipeline already in flight (%s)", class, tag)
			return false
		}
	}

	target, err := o.store.Latest(class)
	if err != nil {
		o.log.Error("download %s: read latest: %v", class, err)
		return false
	}
	if target == TimestampUnknown || target <= currentTs {
		if !force {
			o.log.Info("download %s: nothing newer than %s", class, currentTs)
			return false
		}
		target = currentTs
	}
	if !target.Known() {
		o.log.Warning("download %s: no target timestamp", class)
		return false
	}

	files := o.descriptors[class]
	if len(files) == 0 {
		o.log.Warning("download %s: no artifact descriptors configured", class)
		return false
	}

	o.purger.Purge(class, target)

	batchIDs, err := o.enqueuer.EnqueueBatch(DownloadBatch{
		Class:  class,
		Target: target,
		Files:  files,
	})
	if err != nil {
		o.log.Error("download %s: enqueue batch: %v", class, err)
		o.cancelIDs(batchIDs)
		return false
	}
	if _, _, err := o.chain.Build(class, target, batchIDs); err != nil {
		o.log.Error("download %s: build chain: %v", class, err)
		sched.CancelByTag(StageTag(class, o.enqueuer.Mode(), StageWatch))
		o.cancelIDs(batchIDs)
		return false
	}

	o.status.Publish(OutcomeInProgress)
	o.log.Info("download %s: pipeline started for %s (%d batch jobs)", class, target, len(batchIDs))
	return true
}

// Cancel terminates the in-flight pipeline for class, if any. Under the
// coordinator transport only the batch job is cancelled; the watch stage
// then observes the cancellation and fails the chain. Under the platform
// transport every stage tag is cancelled; the per-file jobs all carry the
// batch stage tag, so cancellation addresses them even when the pipeline
// predates the current process. Returns whether any job was cancelled.
func (o *DownloadOrchestrator) Cancel(class ArtifactClass) bool {
	lock := o.classLock(class)
	lock.Lock()
	defer lock.Unlock()

	sched := o.chain.sched
	mode := o.enqueuer.Mode()
	cancelled := 0

	if mode == TransportCoordinator {
		cancelled += sched.CancelByTag(StageTag(class, mode, StageBatch))
	} else {
		cancelled += sched.CancelByTag(StageTag(class, mode, StageWatch))
		cancelled += sched.CancelByTag(StageTag(class, mode, StageInstall))
		cancelled += sched.CancelByTag(StageTag(class, mode, StageBatch))
	}

	if cancelled > 0 {
		o.log.Info("cancel %s: cancelled %d jobs", class, cancelled)
	}
	return cancelled > 0
}

// InFlight reports whether a pipeline for class has a non-terminal stage.
func (o *DownloadOrchestrator) InFlight(class ArtifactClass) bool {
	sched := o.chain.sched
	for _, tag := range o.gateTags(class) {
		if sched.IsScheduled(tag) || sched.IsRunning(tag) {
			return true
		}
	}
	return false
}

// gateTags lists every stage tag the dedup gate inspects for class.
func (o *DownloadOrchestrator) gateTags(class ArtifactClass) []string {
	mode := o.enqueuer.Mode()
	return []string{
		StageTag(class, mode, StageBatch),
		StageTag(class, mode, StageWatch),
		StageTag(class, mode, StageInstall),
	}
}

func (o *DownloadOrchestrator) cancelIDs(ids []int64) {
	for _, id := range ids {
		o.chain.sched.CancelJob(id)
	}
}
