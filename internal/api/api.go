// Package api implements the daemon's operational methods on top of the
// orchestration core and registers them on the socket server.
package api

import (
	"context"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/jobs"
	"github.com/blocklistd/blocklistd/internal/server"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

type Api struct {
	log     logger.Logger
	checker *blocklib.FreshnessChecker
	orch    *blocklib.DownloadOrchestrator
	runner  *blocklib.PipelineRunner
	store   blocklib.TimestampStore
	status  *blocklib.StatusPublisher
	sched   *jobs.Scheduler
}

func NewApi(
	l logger.Logger,
	checker *blocklib.FreshnessChecker,
	orch *blocklib.DownloadOrchestrator,
	runner *blocklib.PipelineRunner,
	store blocklib.TimestampStore,
	status *blocklib.StatusPublisher,
	sched *jobs.Scheduler,
) (*Api, error) {
	return &Api{
		log:     l,
		checker: checker,
		orch:    orch,
		runner:  runner,
		store:   store,
		status:  status,
		sched:   sched,
	}, nil
}

func (s *Api) RegisterHandlers(srv *server.Server) {
	srv.RegisterHandler(common.UPDATE_CHECK, s.checkHandler)
	srv.RegisterHandler(common.UPDATE_DOWNLOAD, s.downloadHandler)
	srv.RegisterHandler(common.UPDATE_CANCEL, s.cancelHandler)
	srv.RegisterHandler(common.UPDATE_STATUS, s.statusHandler)
	srv.RegisterHandler(common.UPDATE_WATCH, s.watchHandler)
	srv.RegisterHandler(common.UPDATE_VERSIONS, s.versionsHandler)
	srv.RegisterHandler(common.UPDATE_FLUSH, s.flushHandler)
}

// RegisterJobKinds binds the pipeline runner's handlers to their job kinds
// and installs the terminal hook that surfaces pipeline failures on the
// status stream.
func (s *Api) RegisterJobKinds() {
	s.sched.Register(blocklib.KindArtifactDownload, s.runner.RunArtifactDownload)
	s.sched.Register(blocklib.KindBatchDownload, s.runner.RunBatchDownload)
	s.sched.Register(blocklib.KindWatch, s.runner.RunWatch)
	s.sched.Register(blocklib.KindInstall, s.runner.RunInstall)
	s.sched.OnTerminal(s.onJobTerminal)
}

// onJobTerminal publishes the pipeline's terminal failure exactly once: a
// watch stage that failed or was cancelled ends the chain, as does a failed
// install stage. Success is published by the install handler itself.
func (s *Api) onJobTerminal(job blocklib.PipelineJob, state blocklib.JobState) {
	switch job.Kind {
	case blocklib.KindWatch:
		if state == blocklib.JobStateFailed || state == blocklib.JobStateCancelled {
			s.log.Warning("pipeline %s: watch stage %s", job.Payload.Class, state)
			s.status.Publish(blocklib.OutcomeFailure)
		}
	case blocklib.KindInstall:
		if state == blocklib.JobStateFailed {
			s.log.Error("pipeline %s: install stage failed", job.Payload.Class)
			s.status.Publish(blocklib.OutcomeFailure)
		}
	}
}

// StartStatusForwarder bridges the status publisher onto the socket pool
// and the JSON-RPC notifier until ctx is cancelled.
func (s *Api) StartStatusForwarder(ctx context.Context, pool *server.Pool, notifier *server.RPCNotifier) {
	updates, cancel := s.status.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case outcome, ok := <-updates:
				if !ok {
					return
				}
				update := common.StatusUpdate{
					Outcome: int(outcome),
					Status:  outcome.String(),
				}
				pool.Broadcast(common.StatusTopic, server.MakeResult(common.UPDATE_STATUS, &update))
				notifier.Broadcast("status.changed", &server.StatusChangedNotification{
					Outcome: update.Outcome,
					Status:  update.Status,
				})
			}
		}
	}()
}

// Check implements server.Updater.
func (s *Api) Check(ctx context.Context, p *common.CheckParams) (*common.CheckResponse, error) {
	class, err := blocklib.ParseClass(p.Class)
	if err != nil {
		return nil, err
	}
	outcome := s.checker.CheckRetry(ctx, class, p.Retry)
	latest, _ := s.store.Latest(class)
	installed, _ := s.store.Installed(class)
	return &common.CheckResponse{
		Class:     string(class),
		Outcome:   int(outcome),
		Status:    outcome.String(),
		Latest:    int64(latest),
		Installed: int64(installed),
	}, nil
}

// Download implements server.Updater.
func (s *Api) Download(p *common.DownloadParams) (*common.DownloadResponse, error) {
	class, err := blocklib.ParseClass(p.Class)
	if err != nil {
		return nil, err
	}
	installed, err := s.store.Installed(class)
	if err != nil {
		return nil, err
	}
	started := s.orch.Download(class, installed, p.Force)
	res := &common.DownloadResponse{
		Class:   string(class),
		Started: started,
	}
	if started {
		target, _ := s.store.Latest(class)
		if target <= installed {
			target = installed
		}
		res.Target = int64(target)
	}
	return res, nil
}

// Cancel implements server.Updater.
func (s *Api) Cancel(p *common.CancelParams) (*common.CancelResponse, error) {
	class, err := blocklib.ParseClass(p.Class)
	if err != nil {
		return nil, err
	}
	return &common.CancelResponse{
		Class:     string(class),
		Cancelled: s.orch.Cancel(class),
	}, nil
}

// Status implements server.Updater.
func (s *Api) Status() (*common.StatusResponse, error) {
	last := s.status.Last()
	return &common.StatusResponse{
		Outcome: int(last),
		Status:  last.String(),
	}, nil
}

// Versions implements server.Updater.
func (s *Api) Versions() (*common.VersionsResponse, error) {
	res := &common.VersionsResponse{}
	for _, class := range blocklib.Classes {
		installed, err := s.store.Installed(class)
		if err != nil {
			return nil, err
		}
		latest, err := s.store.Latest(class)
		if err != nil {
			return nil, err
		}
		res.Classes = append(res.Classes, common.ClassVersion{
			Class:     string(class),
			Installed: int64(installed),
			Latest:    int64(latest),
		})
	}
	return res, nil
}

func (s *Api) Close() error {
	return s.sched.Close()
}

var _ server.Updater = (*Api)(nil)
