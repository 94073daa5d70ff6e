package cmd

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/blocklistd/blocklistd/internal/api"
	"github.com/blocklistd/blocklistd/internal/jobs"
	"github.com/blocklistd/blocklistd/internal/server"
	"github.com/blocklistd/blocklistd/internal/store"
	"github.com/blocklistd/blocklistd/internal/trigger"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

// DaemonComponents holds every initialized daemon component so startup and
// cleanup stay in one place.
type DaemonComponents struct {
	Store     *store.SQLiteStore
	Scheduler *jobs.Scheduler
	Checker   *blocklib.FreshnessChecker
	Orch      *blocklib.DownloadOrchestrator
	Api       *api.Api
	Server    *server.Server
	Trigger   *trigger.Trigger
	log       logger.Logger
}

// Close releases daemon resources in reverse order of initialization.
func (c *DaemonComponents) Close() {
	if c.log != nil {
		c.log.Info("shutting down daemon")
	}
	if c.Api != nil {
		_ = c.Api.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.log != nil {
		c.log.Info("daemon stopped")
		_ = c.log.Close()
	}
}

// resolverRetryConfig builds the timestamp resolver's retry budget, which
// is configured separately from the pipeline's fetch retries.
func resolverRetryConfig(cfg *Config) blocklib.RetryConfig {
	return blocklib.RetryConfig{
		MaxRetries: cfg.Resolver.MaxRetries,
		BaseDelay:  blocklib.DEF_BASE_DELAY,
		MaxDelay:   blocklib.DEF_MAX_DELAY,
	}
}

// initDaemonComponents wires the whole daemon from the configuration.
// On error, any partially initialized components are cleaned up before
// returning.
var initDaemonComponents = func(log logger.Logger, cfg *Config, version string) (*DaemonComponents, error) {
	st, err := store.OpenSQLite(filepath.Join(blocklib.ConfigDir, "timestamps.db"))
	if err != nil {
		log.Error("timestamp store initialization failed: %v", err)
		return nil, err
	}

	sched, err := jobs.New(filepath.Join(blocklib.ConfigDir, "jobs.state"), log)
	if err != nil {
		log.Error("job scheduler initialization failed: %v", err)
		st.Close()
		return nil, err
	}

	client := &http.Client{Timeout: DEF_TIMEOUT}
	retry := blocklib.RetryConfig{
		MaxRetries: cfg.Pipeline.FetchRetries,
		BaseDelay:  blocklib.DEF_BASE_DELAY,
		MaxDelay:   blocklib.DEF_MAX_DELAY,
	}

	layout := blocklib.NewLayout(afero.NewOsFs(), cfg.DataDir)
	purger := blocklib.NewPurger(layout, log)
	fetcher := blocklib.NewFetcher(client, layout, retry, log)
	status := blocklib.NewStatusPublisher()

	resolver := blocklib.NewHTTPResolver(client, cfg.Resolver.Endpoint, resolverRetryConfig(cfg), log)
	checker := blocklib.NewFreshnessChecker(st, resolver, status, cfg.Resolver.AppVersion, log)

	batchBackoff := blocklib.BackoffPolicy{
		Step:        blocklib.DEF_BASE_DELAY,
		MinInterval: blocklib.DEF_BASE_DELAY,
		MaxRetries:  cfg.Pipeline.FetchRetries,
	}
	watchInterval := time.Duration(cfg.Pipeline.WatchInterval)
	watchBackoff := blocklib.BackoffPolicy{
		InitialDelay: watchInterval,
		Step:         watchInterval,
		MinInterval:  watchInterval,
		MaxRetries:   cfg.Pipeline.WatchRetries,
	}
	installBackoff := blocklib.BackoffPolicy{
		Step:        blocklib.DEF_BASE_DELAY,
		MinInterval: blocklib.DEF_BASE_DELAY,
		MaxRetries:  1,
	}

	var enqueuer blocklib.BatchEnqueuer
	if cfg.Transport == string(blocklib.TransportPlatform) {
		enqueuer = blocklib.NewPlatformEnqueuer(sched, batchBackoff)
	} else {
		enqueuer = blocklib.NewCoordinatorEnqueuer(sched, batchBackoff)
	}
	chain := blocklib.NewPipelineChain(sched, enqueuer.Mode(), watchBackoff, installBackoff)
	orch := blocklib.NewDownloadOrchestrator(st, enqueuer, chain, purger, status, cfg.Descriptors(), log)
	runner := blocklib.NewPipelineRunner(fetcher, layout, st, status, sched, log)

	a, err := api.NewApi(log, checker, orch, runner, st, status, sched)
	if err != nil {
		log.Error("api initialization failed: %v", err)
		sched.Close()
		st.Close()
		return nil, err
	}
	a.RegisterJobKinds()

	serv := server.NewServer(log, a, &server.RPCConfig{
		Secret:    cfg.RPC.Secret,
		ListenAll: cfg.RPC.ListenAll,
		Version:   version,
	}, status, cfg.Port)
	a.RegisterHandlers(serv)

	var trig *trigger.Trigger
	if cfg.CheckSchedule != scheduleOff {
		trig, err = trigger.New(cfg.CheckSchedule, checker, orch, st, log)
	}
	if err != nil {
		log.Error("trigger initialization failed: %v", err)
		sched.Close()
		st.Close()
		return nil, err
	}

	return &DaemonComponents{
		Store:     st,
		Scheduler: sched,
		Checker:   checker,
		Orch:      orch,
		Api:       a,
		Server:    serv,
		Trigger:   trig,
		log:       log,
	}, nil
}
