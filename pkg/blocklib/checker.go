package blocklib

import (
	"context"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// FreshnessChecker decides whether a newer artifact set has been published.
// Every invocation publishes OutcomeInProgress synchronously before any
// remote work, so observers subscribing mid-check always see it before the
// terminal value.
type FreshnessChecker struct {
	store      TimestampStore
	resolver   Resolver
	status     *StatusPublisher
	appVersion string
	log        logger.Logger
}

// NewFreshnessChecker wires a checker over its collaborators.
func NewFreshnessChecker(store TimestampStore, resolver Resolver, status *StatusPublisher, appVersion string, log logger.Logger) *FreshnessChecker {
	return &FreshnessChecker{
		store:      store,
		resolver:   resolver,
		status:     status,
		appVersion: appVersion,
		log:        log,
	}
}

// Check runs a freshness check without transport retries. Callers that want
// retries re-invoke via CheckRetry with an incremented count.
func (c *FreshnessChecker) Check(ctx context.Context, class ArtifactClass) FreshnessOutcome {
	return c.CheckRetry(ctx, class, 0)
}

// CheckRetry resolves the latest publishable timestamp for class and
// compares it against the installed one. On a newer publication the latest
// known timestamp is recorded and OutcomeSuccess returned; an unreachable
// or malformed response yields OutcomeFailure with no mutation; anything
// else is OutcomeNotRequired with no mutation.
func (c *FreshnessChecker) CheckRetry(ctx context.Context, class ArtifactClass, retryCount int) FreshnessOutcome {
	c.status.Publish(OutcomeInProgress)

	installed, err := c.store.Installed(class)
	if err != nil {
		c.log.Error("check %s: read installed: %v", class, err)
		return c.finish(OutcomeFailure)
	}

	resolved := c.resolver.ResolveLatest(ctx, installed, c.appVersion, retryCount)
	if resolved == TimestampUnknown {
		c.log.Warning("check %s: latest timestamp unresolvable", class)
		return c.finish(OutcomeFailure)
	}
	if resolved <= installed {
		return c.finish(OutcomeNotRequired)
	}
	if err := c.store.SetLatest(class, resolved); err != nil {
		c.log.Error("check %s: record latest %s: %v", class, resolved, err)
		return c.finish(OutcomeFailure)
	}
	c.log.Info("check %s: new publication %s (installed %s)", class, resolved, installed)
	return c.finish(OutcomeSuccess)
}

func (c *FreshnessChecker) finish(o FreshnessOutcome) FreshnessOutcome {
	c.status.Publish(o)
	return o
}
