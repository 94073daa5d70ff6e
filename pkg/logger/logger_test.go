package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStandardLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0))

	l.Info("started %s", "daemon")
	l.Warning("disk %d%% full", 91)
	l.Error("boom")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[INFO] started daemon",
		"[WARNING] disk 91% full",
		"[ERROR] boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMockLoggerRecordsCalls(t *testing.T) {
	m := NewMockLogger()
	m.Info("a %d", 1)
	m.Warning("b")
	m.Error("c")
	_ = m.Close()

	if len(m.InfoCalls) != 1 || m.InfoCalls[0] != "a 1" {
		t.Fatalf("InfoCalls = %v", m.InfoCalls)
	}
	if len(m.WarningCalls) != 1 || len(m.ErrorCalls) != 1 {
		t.Fatalf("calls = %v / %v", m.WarningCalls, m.ErrorCalls)
	}
	if !m.CloseCalled {
		t.Fatal("CloseCalled not recorded")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := NewMockLogger(), NewMockLogger()
	m := NewMultiLogger(a, b)

	m.Info("hello")
	m.Error("bad")
	_ = m.Close()

	for i, mock := range []*MockLogger{a, b} {
		if len(mock.InfoCalls) != 1 || len(mock.ErrorCalls) != 1 {
			t.Fatalf("backend %d calls = %v / %v", i, mock.InfoCalls, mock.ErrorCalls)
		}
		if !mock.CloseCalled {
			t.Fatalf("backend %d not closed", i)
		}
	}
}

func TestFileLoggerWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklistd.log")
	l := NewFileLogger(path, FileOptions{MaxSizeMB: 1})

	l.Info("persisted message")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "[INFO] persisted message") {
		t.Fatalf("log content = %q", b)
	}
}

func TestToStdLogger(t *testing.T) {
	m := NewMockLogger()
	std := ToStdLogger(m)
	std.Println("adapted")
	if len(m.InfoCalls) != 1 || !strings.Contains(m.InfoCalls[0], "adapted") {
		t.Fatalf("InfoCalls = %v", m.InfoCalls)
	}
}
