package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/engine"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
)

func TestLatestBeforePublish(t *testing.T) {
	var h Holder
	if _, ok := h.Latest(); ok {
		t.Error("expected no snapshot before the first publish")
	}
}

func TestPublishAndLatest(t *testing.T) {
	var h Holder
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var p pose.Pose
	p[pose.Nose] = pose.Keypoint{Y: 0.2, X: 0.5, Confidence: 0.9}

	h.Publish(Snapshot{
		Timestamp: now,
		Pose:      p,
		Assessment: engine.Assessment{
			Timestamp: now,
			Result:    engine.ScoreResult{Score: 90, Classification: engine.ClassificationGood},
		},
	})

	got, ok := h.Latest()
	if !ok {
		t.Fatal("expected a snapshot after publish")
	}
	if !got.Timestamp.Equal(now) {
		t.Errorf("timestamp: got %v, want %v", got.Timestamp, now)
	}
	if got.Pose[pose.Nose].Confidence != 0.9 {
		t.Error("pose not carried through")
	}
	if got.Assessment.Result.Score != 90 {
		t.Error("assessment not carried through")
	}
}

func TestPublishReplaces(t *testing.T) {
	var h Holder
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	h.Publish(Snapshot{Timestamp: base})
	h.Publish(Snapshot{Timestamp: base.Add(time.Second)})

	got, ok := h.Latest()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if !got.Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("expected the later snapshot, got %v", got.Timestamp)
	}
}

func TestConcurrentReadersSingleWriter(t *testing.T) {
	var h Holder
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if s, ok := h.Latest(); ok && s.Timestamp.Before(base) {
					t.Error("read a snapshot older than any published")
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		h.Publish(Snapshot{Timestamp: base.Add(time.Duration(i) * time.Millisecond)})
	}
	close(stop)
	wg.Wait()
}
