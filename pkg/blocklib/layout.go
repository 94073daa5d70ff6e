package blocklib

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CanonicalDirName is the directory the installed artifact files live in,
// next to the per-timestamp namespace directories of the same class.
const CanonicalDirName = "current"

// Layout maps artifact classes and timestamps onto the on-disk structure
// <root>/<class>/<timestamp>/<file>, with the installed set promoted to
// <root>/<class>/current/<file>. All access goes through an afero.Fs so the
// daemon runs on the OS filesystem and tests run in memory.
type Layout struct {
	fs   afero.Fs
	root string
}

// NewLayout creates a layout rooted at root on the given filesystem.
func NewLayout(fs afero.Fs, root string) *Layout {
	return &Layout{fs: fs, root: root}
}

// Fs returns the underlying filesystem.
func (l *Layout) Fs() afero.Fs {
	return l.fs
}

// ClassDir returns the directory holding every namespace of a class.
func (l *Layout) ClassDir(class ArtifactClass) string {
	return filepath.Join(l.root, string(class))
}

// NamespaceDir returns the directory a batch targeting ts downloads into.
func (l *Layout) NamespaceDir(class ArtifactClass, ts Timestamp) string {
	return filepath.Join(l.root, string(class), ts.String())
}

// CanonicalDir returns the directory the installed files of a class live in.
func (l *Layout) CanonicalDir(class ArtifactClass) string {
	return filepath.Join(l.root, string(class), CanonicalDirName)
}

// Promote moves every file of the ts namespace into the canonical location,
// replacing whatever was installed before, and removes the emptied
// namespace directory. Files already moved stay moved if a later one fails;
// the stage is re-run by the scheduler and skips files that are gone.
func (l *Layout) Promote(class ArtifactClass, ts Timestamp) error {
	src := l.NamespaceDir(class, ts)
	dst := l.CanonicalDir(class)
	if err := l.fs.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("promote %s/%s: %w", class, ts, err)
	}
	entries, err := afero.ReadDir(l.fs, src)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing left to move; a previous run already promoted.
			return nil
		}
		return fmt.Errorf("promote %s/%s: %w", class, ts, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if err := l.fs.Remove(to); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("promote %s/%s: replace %s: %w", class, ts, e.Name(), err)
		}
		if err := l.fs.Rename(from, to); err != nil {
			return fmt.Errorf("promote %s/%s: move %s: %w", class, ts, e.Name(), err)
		}
	}
	return l.fs.RemoveAll(src)
}
