package blocklib

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

func TestPurgeRemovesStaleNamespaces(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLayout(fs, "/data")
	p := NewPurger(l, logger.NewNopLogger())

	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, 100), "a.txt"), "stale")
	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, 200), "a.txt"), "stale")
	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, 300), "a.txt"), "keep")
	writeFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "a.txt"), "installed")
	writeFile(t, fs, filepath.Join(l.ClassDir(ClassLocal), "notes", "readme"), "not a namespace")

	p.Purge(ClassLocal, 300)

	for _, ts := range []Timestamp{100, 200} {
		if ok, _ := afero.DirExists(fs, l.NamespaceDir(ClassLocal, ts)); ok {
			t.Errorf("namespace %s must be purged", ts)
		}
	}
	if ok, _ := afero.DirExists(fs, l.NamespaceDir(ClassLocal, 300)); !ok {
		t.Error("kept namespace must survive")
	}
	if ok, _ := afero.DirExists(fs, l.CanonicalDir(ClassLocal)); !ok {
		t.Error("canonical directory must survive")
	}
	if ok, _ := afero.DirExists(fs, filepath.Join(l.ClassDir(ClassLocal), "notes")); !ok {
		t.Error("non-namespace directory must survive")
	}
}

func TestPurgeOtherClassUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLayout(fs, "/data")
	p := NewPurger(l, logger.NewNopLogger())

	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassRemote, 100), "a.txt"), "other class")

	p.Purge(ClassLocal, 999)

	if ok, _ := afero.DirExists(fs, l.NamespaceDir(ClassRemote, 100)); !ok {
		t.Fatal("purging one class must never touch the other")
	}
}

func TestPurgeMissingClassDir(t *testing.T) {
	l := NewLayout(afero.NewMemMapFs(), "/data")
	p := NewPurger(l, logger.NewNopLogger())
	// Must not panic or error when nothing has been downloaded yet.
	p.Purge(ClassLocal, 100)
}
