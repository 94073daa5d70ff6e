package blocklib

import (
	"testing"
	"time"
)

func testBackoff() BackoffPolicy {
	return BackoffPolicy{Step: time.Millisecond, MinInterval: time.Millisecond, MaxRetries: 3}
}

func TestChainBuildOrdersInstallAfterWatch(t *testing.T) {
	sched := newFakeSched()
	c := NewPipelineChain(sched, TransportCoordinator, testBackoff(), testBackoff())

	watchID, installID, err := c.Build(ClassLocal, 500, []int64{7, 8})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	watch, ok := sched.jobByID(watchID)
	if !ok {
		t.Fatal("watch job not enqueued")
	}
	if watch.Kind != KindWatch {
		t.Fatalf("watch kind = %s", watch.Kind)
	}
	if watch.Tag != StageTag(ClassLocal, TransportCoordinator, StageWatch) {
		t.Fatalf("watch tag = %s", watch.Tag)
	}
	if len(watch.Payload.BatchJobIDs) != 2 {
		t.Fatalf("watch batch ids = %v", watch.Payload.BatchJobIDs)
	}

	install, ok := sched.jobByID(installID)
	if !ok {
		t.Fatal("install job not enqueued")
	}
	if install.Kind != KindInstall {
		t.Fatalf("install kind = %s", install.Kind)
	}
	if install.Payload.TargetTimestamp != 500 {
		t.Fatalf("install target = %v", install.Payload.TargetTimestamp)
	}
	if dep := sched.deps[installID]; dep != watchID {
		t.Fatalf("install depends on %d, want watch %d", dep, watchID)
	}
	if dep := sched.deps[watchID]; dep != 0 {
		t.Fatalf("watch depends on %d, want none", dep)
	}
}

func TestStageTagIsolation(t *testing.T) {
	seen := make(map[string]bool)
	for _, class := range Classes {
		for _, mode := range []TransportMode{TransportPlatform, TransportCoordinator} {
			for _, stage := range []string{StageBatch, StageWatch, StageInstall} {
				tag := StageTag(class, mode, stage)
				if seen[tag] {
					t.Fatalf("duplicate stage tag %s", tag)
				}
				seen[tag] = true
			}
		}
	}
}
