// Package trigger runs the periodic freshness check. A cron expression
// drives the cadence; every fire checks each artifact class and starts the
// download pipeline for any class with a newer publication.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

const maxSleepCap = 60 * time.Second

// Trigger schedules recurring freshness checks from a cron expression.
type Trigger struct {
	expr  string
	check *blocklib.FreshnessChecker
	orch  *blocklib.DownloadOrchestrator
	store blocklib.TimestampStore
	log   logger.Logger
}

// New validates expr and creates the trigger.
func New(expr string, check *blocklib.FreshnessChecker, orch *blocklib.DownloadOrchestrator, store blocklib.TimestampStore, log logger.Logger) (*Trigger, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}
	return &Trigger{
		expr:  expr,
		check: check,
		orch:  orch,
		store: store,
		log:   log,
	}, nil
}

// Start launches the trigger loop. It exits when ctx is cancelled.
func (t *Trigger) Start(ctx context.Context) {
	go t.run(ctx)
}

// run sleeps until the next cron occurrence with a 60s max-sleep-cap so a
// clock jump never strands the loop, then fires and reschedules.
func (t *Trigger) run(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(t.expr, time.Now(), false)
		if err != nil {
			t.log.Error("trigger: next occurrence: %v", err)
			return
		}
		if !t.sleepUntil(ctx, next) {
			return
		}
		t.fire(ctx)
	}
}

func (t *Trigger) sleepUntil(ctx context.Context, next time.Time) bool {
	for {
		dur := time.Until(next)
		if dur <= 0 {
			return true
		}
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

// fire checks every class and starts the pipeline for those with a newer
// publication. The orchestrator's dedup gate makes an overlap with a
// CLI-initiated pipeline harmless.
func (t *Trigger) fire(ctx context.Context) {
	for _, class := range blocklib.Classes {
		outcome := t.check.Check(ctx, class)
		if outcome != blocklib.OutcomeSuccess {
			continue
		}
		installed, err := t.store.Installed(class)
		if err != nil {
			t.log.Error("trigger %s: read installed: %v", class, err)
			continue
		}
		if t.orch.Download(class, installed, false) {
			t.log.Info("trigger %s: download pipeline started", class)
		}
	}
}
