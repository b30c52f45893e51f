// Package snapshot exchanges the latest pipeline output between the single
// pipeline writer and any number of HTTP readers. The writer publishes an
// immutable value by atomic replace under a short-held lock; readers copy it
// out. Readers never block the writer beyond the pointer swap, and the writer
// never waits on readers.
package snapshot

import (
	"sync"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/engine"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
)

// Snapshot is one frame's complete, immutable pipeline output.
type Snapshot struct {
	Timestamp  time.Time
	Pose       pose.Pose
	Assessment engine.Assessment
}

// Holder is a mutex-guarded single slot holding the most recent Snapshot.
// The zero value is ready to use and reports no snapshot until the first
// Publish.
type Holder struct {
	mu     sync.RWMutex
	latest *Snapshot
}

// Publish replaces the held snapshot.
func (h *Holder) Publish(s Snapshot) {
	h.mu.Lock()
	h.latest = &s
	h.mu.Unlock()
}

// Latest returns a copy of the held snapshot. ok is false before the first
// frame has been processed (the warming-up state).
func (h *Holder) Latest() (s Snapshot, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}
