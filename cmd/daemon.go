package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

func daemon(ctx *cli.Context) error {
	if err := runDaemon(); err != nil {
		printRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}

// RunDaemon runs blocklistd in the foreground until interrupted. It is the
// entry point of the standalone daemon binary.
func RunDaemon(bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	return runDaemon()
}

func runDaemon() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	console := logger.NewStandardLogger(log.Default())
	file := logger.NewFileLogger(cfg.Log.File, logger.FileOptions{
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	l := logger.NewMultiLogger(console, file)

	c, err := initDaemonComponents(l, cfg, currentBuildArgs.Version)
	if err != nil {
		return err
	}
	defer c.Close()

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c.Scheduler.Start(runCtx)
	if c.Trigger != nil {
		c.Trigger.Start(runCtx)
	}
	c.Api.StartStatusForwarder(runCtx, c.Server.Pool(), c.Server.Notifier())

	l.Info("blocklistd %s listening", currentBuildArgs.Version)
	return c.Server.Start(runCtx)
}
