package blocklib

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// Purger removes stale namespace directories before a new batch downloads.
// Purging one class never touches the other, and a file that cannot be
// deleted never blocks the pipeline: the new batch lands in its own
// namespace regardless.
type Purger struct {
	layout *Layout
	log    logger.Logger
}

// NewPurger creates a purger over the given layout.
func NewPurger(layout *Layout, log logger.Logger) *Purger {
	return &Purger{layout: layout, log: log}
}

// Purge deletes every namespace directory of class whose timestamp differs
// from keep. The canonical directory is left alone. Failures are logged and
// swallowed.
func (p *Purger) Purge(class ArtifactClass, keep Timestamp) {
	dir := p.layout.ClassDir(class)
	entries, err := afero.ReadDir(p.layout.Fs(), dir)
	if err != nil {
		if !os.IsNotExist(err) {
			p.log.Warning("purge %s: %v", class, err)
		}
		return
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == CanonicalDirName {
			continue
		}
		ts, perr := strconv.ParseInt(e.Name(), 10, 64)
		if perr != nil {
			// Not a namespace directory; leave it.
			continue
		}
		if Timestamp(ts) == keep {
			continue
		}
		stale := filepath.Join(dir, e.Name())
		if rerr := p.layout.Fs().RemoveAll(stale); rerr != nil {
			p.log.Warning("purge %s: cannot remove %s: %v", class, stale, rerr)
			continue
		}
		p.log.Info("purge %s: removed stale namespace %s", class, e.Name())
	}
}
