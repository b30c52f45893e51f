package engine

import (
	"math"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/timeutil"
)

// Alerts are the latched boolean outputs of the temporal monitor.
type Alerts struct {
	// BadPosture is raised after the classification has been continuously
	// BAD for longer than the configured duration. A single GOOD frame
	// resets the run to zero.
	BadPosture bool `json:"bad_posture_alert"`

	// Seated is raised once the session has run longer than the configured
	// duration. Nothing internal resets the session start, so once raised
	// it stays raised until the monitor is reconstructed.
	Seated bool `json:"seated_alert"`

	// Focused means the head has been still (reference-angle deltas under
	// the movement threshold) for longer than the configured duration. It
	// says nothing about gaze direction or task engagement.
	Focused bool `json:"focused"`
}

// MonitorConfig is the immutable timing configuration for a Monitor.
type MonitorConfig struct {
	// BadPostureAlertAfter is how long the classification must stay BAD
	// before the bad-posture alert raises.
	BadPostureAlertAfter time.Duration

	// SeatedAlertAfter is how long after monitor construction the
	// seated-too-long alert raises.
	SeatedAlertAfter time.Duration

	// FocusAfter is how long the head must stay still before the focused
	// flag raises.
	FocusAfter time.Duration

	// HeadMovementThreshDeg is the reference-angle delta, in degrees, that
	// counts as head movement.
	HeadMovementThreshDeg float64
}

// Monitor converts the instantaneous score/feature stream into temporally
// meaningful alerts. It is the only part of the engine with state that
// outlives a single frame: a handful of timers mutated exclusively by
// Update. Not safe for concurrent use; the single pipeline writer owns it.
type Monitor struct {
	cfg MonitorConfig

	badSince     *time.Time
	sessionStart time.Time
	lastRef      *float64
	lastMove     time.Time
}

// NewMonitor creates a monitor whose session and movement timers start at the
// clock's current time.
func NewMonitor(cfg MonitorConfig, clock timeutil.Clock) *Monitor {
	now := clock.Now()
	return &Monitor{
		cfg:          cfg,
		sessionStart: now,
		lastMove:     now,
	}
}

// SessionStart returns the construction time of the monitor, which anchors
// the seated-too-long timer.
func (m *Monitor) SessionStart() time.Time {
	return m.sessionStart
}

// Update advances the timers with one frame's classification and focus
// reference angle (nil when the frame had no usable reference) and returns
// the current alert states. All three timers share the caller's wall clock.
func (m *Monitor) Update(now time.Time, result ScoreResult, focusRef *float64) Alerts {
	var alerts Alerts

	// Bad-posture run-length debounce. Strict: any GOOD frame clears the
	// run, so flicker near the boundary restarts the countdown.
	if result.Classification == ClassificationBad {
		if m.badSince == nil {
			t := now
			m.badSince = &t
		}
	} else {
		m.badSince = nil
	}
	alerts.BadPosture = m.badSince != nil && now.Sub(*m.badSince) > m.cfg.BadPostureAlertAfter

	// Seated one-shot latch, anchored at construction.
	alerts.Seated = now.Sub(m.sessionStart) > m.cfg.SeatedAlertAfter

	// Focus/stillness. The reference angle only advances the movement
	// timestamp when present; an absent reference leaves the timers as
	// they were.
	if focusRef != nil {
		if m.lastRef != nil && math.Abs(*focusRef-*m.lastRef) > m.cfg.HeadMovementThreshDeg {
			m.lastMove = now
		}
		m.lastRef = focusRef
		alerts.Focused = now.Sub(m.lastMove) > m.cfg.FocusAfter
	}

	return alerts
}
