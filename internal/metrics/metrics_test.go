package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8)

	snap := w.Snapshot()
	if math.Abs(snap.ImagesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.ImagesPerSec)
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
	if w.samples != 0 || w.steps != 0 {
		t.Fatalf("window was not reset")
	}
}

func TestWindowEmptySnapshot(t *testing.T) {
	var w Window
	snap := w.Snapshot()
	if snap.ImagesPerSec != 0 || snap.AvgDataMS != 0 || snap.AvgComputeMS != 0 {
		t.Fatalf("empty window should snapshot to zeros, got %+v", snap)
	}
}

func TestConfusion(t *testing.T) {
	cm := NewConfusion(3)
	cm.ObserveBatch(
		[]int32{0, 0, 1, 1, 2, 2},
		[]int32{0, 1, 1, 1, 2, 0},
	)

	if got := cm.Total(); got != 6 {
		t.Fatalf("Total() = %d, want 6", got)
	}
	if got := cm.Accuracy(); math.Abs(got-4.0/6.0) > 1e-9 {
		t.Fatalf("Accuracy() = %f, want %f", got, 4.0/6.0)
	}
	if got := cm.Count(0, 1); got != 1 {
		t.Fatalf("Count(0, 1) = %d, want 1", got)
	}

	correct, total, acc := cm.ClassAccuracy(1)
	if correct != 2 || total != 2 || acc != 1.0 {
		t.Fatalf("ClassAccuracy(1) = (%d, %d, %f), want (2, 2, 1.0)", correct, total, acc)
	}

	correct, total, acc = cm.ClassAccuracy(2)
	if correct != 1 || total != 2 || acc != 0.5 {
		t.Fatalf("ClassAccuracy(2) = (%d, %d, %f), want (1, 2, 0.5)", correct, total, acc)
	}
}

func TestConfusionIgnoresOutOfRange(t *testing.T) {
	cm := NewConfusion(2)
	cm.Observe(-1, 0)
	cm.Observe(0, 5)
	if got := cm.Total(); got != 0 {
		t.Fatalf("out-of-range observations counted: Total() = %d", got)
	}
}

func TestConfusionEmpty(t *testing.T) {
	cm := NewConfusion(10)
	if got := cm.Accuracy(); got != 0 {
		t.Fatalf("empty confusion Accuracy() = %f, want 0", got)
	}
	if _, total, acc := cm.ClassAccuracy(4); total != 0 || acc != 0 {
		t.Fatalf("empty class should report zero totals")
	}
}
