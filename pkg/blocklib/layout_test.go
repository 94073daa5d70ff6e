package blocklib

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestLayoutDirs(t *testing.T) {
	l := NewLayout(afero.NewMemMapFs(), "/data")
	if got := l.ClassDir(ClassLocal); got != filepath.Join("/data", "local") {
		t.Fatalf("ClassDir = %s", got)
	}
	if got := l.NamespaceDir(ClassRemote, 1700000000); got != filepath.Join("/data", "remote", "1700000000") {
		t.Fatalf("NamespaceDir = %s", got)
	}
	if got := l.CanonicalDir(ClassLocal); got != filepath.Join("/data", "local", CanonicalDirName) {
		t.Fatalf("CanonicalDir = %s", got)
	}
}

func TestLayoutPromote(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLayout(fs, "/data")
	ts := Timestamp(1700000000)

	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, ts), "hosts.txt"), "new-hosts")
	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, ts), "rules.txt"), "new-rules")
	// An older install that must be replaced.
	writeFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "hosts.txt"), "old-hosts")

	if err := l.Promote(ClassLocal, ts); err != nil {
		t.Fatalf("Promote: %v", err)
	}

	if got := readFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "hosts.txt")); got != "new-hosts" {
		t.Fatalf("hosts.txt = %q, want new-hosts", got)
	}
	if got := readFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "rules.txt")); got != "new-rules" {
		t.Fatalf("rules.txt = %q, want new-rules", got)
	}
	if ok, _ := afero.DirExists(fs, l.NamespaceDir(ClassLocal, ts)); ok {
		t.Fatal("namespace directory must be removed after promote")
	}
}

func TestLayoutPromoteMissingNamespace(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLayout(fs, "/data")
	writeFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "hosts.txt"), "installed")

	// A re-run after a completed promote finds no namespace left.
	if err := l.Promote(ClassLocal, 42); err != nil {
		t.Fatalf("Promote on missing namespace: %v", err)
	}
	if got := readFile(t, fs, filepath.Join(l.CanonicalDir(ClassLocal), "hosts.txt")); got != "installed" {
		t.Fatalf("installed file touched: %q", got)
	}
}

func TestLayoutPromoteLeavesOtherClassAlone(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLayout(fs, "/data")
	ts := Timestamp(100)

	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassLocal, ts), "a.txt"), "a")
	writeFile(t, fs, filepath.Join(l.NamespaceDir(ClassRemote, ts), "b.txt"), "b")

	if err := l.Promote(ClassLocal, ts); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := readFile(t, fs, filepath.Join(l.NamespaceDir(ClassRemote, ts), "b.txt")); got != "b" {
		t.Fatal("remote namespace must be untouched")
	}
}
