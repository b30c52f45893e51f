// Package engine implements the posture feature-extraction and
// temporal-alerting core: body-frame construction, angle/ratio features,
// subscore aggregation, and the timer-based monitor that turns instantaneous
// scores into alerts.
//
// The engine is synchronous and single-threaded: one Update call per frame,
// owned by a single writer. Embedders expose results to readers through an
// immutable snapshot, not by sharing the engine.
package engine

import (
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/timeutil"
)

// Params bundles the immutable configuration for an Engine.
type Params struct {
	View                  CameraView
	MinKeypointConfidence float64
	Scorer                ScorerConfig
	Monitor               MonitorConfig
}

// Assessment is the complete output for one frame.
type Assessment struct {
	Timestamp time.Time   `json:"timestamp"`
	Features  Features    `json:"features"`
	Result    ScoreResult `json:"score_result"`
	Alerts    Alerts      `json:"alerts"`
}

// Engine wires the extractor, scorer, and temporal monitor behind a single
// per-frame Update. Missing or low-confidence joints never surface as errors:
// they degrade to neutral subscores, visible only as a less decisive score.
type Engine struct {
	params    Params
	extractor Extractor
	scorer    *Scorer
	clock     timeutil.Clock
	monitor   *Monitor
}

// New creates an engine for the configured camera placement. The monitor's
// session timers start at the clock's current time.
func New(params Params, clock timeutil.Clock) *Engine {
	return &Engine{
		params:    params,
		extractor: NewExtractor(params.View, params.MinKeypointConfidence),
		scorer:    NewScorer(params.Scorer),
		clock:     clock,
		monitor:   NewMonitor(params.Monitor, clock),
	}
}

// Update assesses one frame at the given time. It is the only mutator of the
// monitor state and must be called from a single goroutine.
func (e *Engine) Update(p pose.Pose, now time.Time) Assessment {
	features := e.extractor.Extract(p)
	result := e.scorer.Score(features)
	alerts := e.monitor.Update(now, result, features.FocusRef)

	return Assessment{
		Timestamp: now,
		Features:  features,
		Result:    result,
		Alerts:    alerts,
	}
}

// Reset discards the monitor state and starts a fresh session anchored at the
// clock's current time. This is the only way to clear the seated latch.
func (e *Engine) Reset() {
	e.monitor = NewMonitor(e.params.Monitor, e.clock)
}

// SessionStart returns the start time of the current monitor session.
func (e *Engine) SessionStart() time.Time {
	return e.monitor.SessionStart()
}

// View returns the configured camera placement.
func (e *Engine) View() CameraView {
	return e.params.View
}
