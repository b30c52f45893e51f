// Package config loads posture tuning parameters from JSON. All fields are
// pointers so partial config files are safe: anything omitted falls back to
// the canonical default via the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/engine"
)

// DefaultConfigPath is the path to the canonical tuning defaults file, the
// single source of truth for all default tuning values.
const DefaultConfigPath = "config/posture.defaults.json"

// PostureConfig is the root tuning configuration: the keypoint confidence
// gate, per-feature thresholds and tolerances, subscore weights, alert
// durations, and the classification boundary.
type PostureConfig struct {
	// Camera placement: "front" or "side".
	CameraView *string `json:"camera_view,omitempty"`

	// Keypoint validator threshold. A joint below this confidence is
	// treated as missing.
	MinKeypointConfidence *float64 `json:"min_keypoint_confidence,omitempty"`

	// Front-view thresholds and weights.
	NeckFlexBadDeg      *float64 `json:"neck_flex_bad_deg,omitempty"`
	TorsoCompressionBad *float64 `json:"torso_compression_bad,omitempty"`
	TorsoRollBadDeg     *float64 `json:"torso_roll_bad_deg,omitempty"`
	WeightNeck          *float64 `json:"weight_neck,omitempty"`
	WeightTorso         *float64 `json:"weight_torso,omitempty"`
	WeightRoll          *float64 `json:"weight_roll,omitempty"`

	// Side-view good-angle bands. The forward band [forward_min,
	// forward_max] gives the forward tolerance, the backward band
	// [backward_min, backward_max] the backward tolerance; the good window
	// is [forward_max, backward_min].
	NeckForwardMinDeg  *float64 `json:"neck_forward_min_deg,omitempty"`
	NeckForwardMaxDeg  *float64 `json:"neck_forward_max_deg,omitempty"`
	NeckBackwardMinDeg *float64 `json:"neck_backward_min_deg,omitempty"`
	NeckBackwardMaxDeg *float64 `json:"neck_backward_max_deg,omitempty"`

	TorsoForwardMinDeg  *float64 `json:"torso_forward_min_deg,omitempty"`
	TorsoForwardMaxDeg  *float64 `json:"torso_forward_max_deg,omitempty"`
	TorsoBackwardMinDeg *float64 `json:"torso_backward_min_deg,omitempty"`
	TorsoBackwardMaxDeg *float64 `json:"torso_backward_max_deg,omitempty"`

	SideWeightNeck  *float64 `json:"side_weight_neck,omitempty"`
	SideWeightTorso *float64 `json:"side_weight_torso,omitempty"`

	// Alert durations as duration strings like "10s", "45m".
	BadPostureAlertTime *string `json:"bad_posture_alert_time,omitempty"`
	SeatedAlertTime     *string `json:"seated_alert_time,omitempty"`
	FocusMinTime        *string `json:"focus_min_time,omitempty"`

	// Focus movement threshold in degrees.
	HeadMovementThreshDeg *float64 `json:"head_movement_thresh_deg,omitempty"`

	// Composite-score classification boundary: GOOD iff score >= boundary.
	GoodScoreBoundary *float64 `json:"good_score_boundary,omitempty"`
}

// EmptyPostureConfig returns a PostureConfig with all fields unset, so every
// accessor serves its default.
func EmptyPostureConfig() *PostureConfig {
	return &PostureConfig{}
}

// LoadPostureConfig loads a PostureConfig from a JSON file. The file must
// have a .json extension and be under the max file size. Fields omitted from
// the file retain their defaults, so partial configs are safe.
func LoadPostureConfig(path string) (*PostureConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPostureConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *PostureConfig) Validate() error {
	if c.CameraView != nil {
		if v := engine.CameraView(*c.CameraView); v != engine.ViewFront && v != engine.ViewSide {
			return fmt.Errorf("camera_view must be %q or %q, got %q", engine.ViewFront, engine.ViewSide, *c.CameraView)
		}
	}

	if c.MinKeypointConfidence != nil {
		if *c.MinKeypointConfidence < 0 || *c.MinKeypointConfidence > 1 {
			return fmt.Errorf("min_keypoint_confidence must be between 0 and 1, got %f", *c.MinKeypointConfidence)
		}
	}

	for name, d := range map[string]*string{
		"bad_posture_alert_time": c.BadPostureAlertTime,
		"seated_alert_time":      c.SeatedAlertTime,
		"focus_min_time":         c.FocusMinTime,
	} {
		if d != nil && *d != "" {
			if _, err := time.ParseDuration(*d); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *d, err)
			}
		}
	}

	// Weights must sum to 1 when fully specified; partial overrides would
	// silently skew the composite.
	if c.WeightNeck != nil && c.WeightTorso != nil && c.WeightRoll != nil {
		if sum := *c.WeightNeck + *c.WeightTorso + *c.WeightRoll; math.Abs(sum-1) > 1e-9 {
			return fmt.Errorf("front-view weights must sum to 1, got %f", sum)
		}
	}
	if c.SideWeightNeck != nil && c.SideWeightTorso != nil {
		if sum := *c.SideWeightNeck + *c.SideWeightTorso; math.Abs(sum-1) > 1e-9 {
			return fmt.Errorf("side-view weights must sum to 1, got %f", sum)
		}
	}

	if c.GoodScoreBoundary != nil {
		if *c.GoodScoreBoundary < 0 || *c.GoodScoreBoundary > 100 {
			return fmt.Errorf("good_score_boundary must be between 0 and 100, got %f", *c.GoodScoreBoundary)
		}
	}

	return nil
}

func f64(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func duration(p *string, def time.Duration) time.Duration {
	if p == nil || *p == "" {
		return def
	}
	d, err := time.ParseDuration(*p)
	if err != nil {
		return def
	}
	return d
}

// GetCameraView returns the camera placement or the default.
func (c *PostureConfig) GetCameraView() engine.CameraView {
	if c.CameraView == nil {
		return engine.ViewFront
	}
	return engine.CameraView(*c.CameraView)
}

// GetMinKeypointConfidence returns the validator threshold or the default.
func (c *PostureConfig) GetMinKeypointConfidence() float64 {
	return f64(c.MinKeypointConfidence, 0.4)
}

// GetNeckFlexBadDeg returns the front-view neck flexion bad threshold.
func (c *PostureConfig) GetNeckFlexBadDeg() float64 {
	return f64(c.NeckFlexBadDeg, 18.0)
}

// GetTorsoCompressionBad returns the front-view torso compression threshold.
func (c *PostureConfig) GetTorsoCompressionBad() float64 {
	return f64(c.TorsoCompressionBad, 1.6)
}

// GetTorsoRollBadDeg returns the front-view lateral lean threshold.
func (c *PostureConfig) GetTorsoRollBadDeg() float64 {
	return f64(c.TorsoRollBadDeg, 12.0)
}

// GetFrontWeights returns the front-view subscore weights.
func (c *PostureConfig) GetFrontWeights() engine.FrontWeights {
	return engine.FrontWeights{
		Neck:  f64(c.WeightNeck, 0.4),
		Torso: f64(c.WeightTorso, 0.4),
		Roll:  f64(c.WeightRoll, 0.2),
	}
}

// GetSideWeights returns the side-view subscore weights.
func (c *PostureConfig) GetSideWeights() engine.SideWeights {
	return engine.SideWeights{
		Neck:  f64(c.SideWeightNeck, 0.5),
		Torso: f64(c.SideWeightTorso, 0.5),
	}
}

// GetNeckRange returns the side-view neck good-angle window with its
// forward/backward tolerances derived from the configured bands.
func (c *PostureConfig) GetNeckRange() engine.AngleRange {
	fMin := f64(c.NeckForwardMinDeg, 160.0)
	fMax := f64(c.NeckForwardMaxDeg, 180.0)
	bMin := f64(c.NeckBackwardMinDeg, 180.0)
	bMax := f64(c.NeckBackwardMaxDeg, 190.0)
	return engine.AngleRange{
		GoodMin:           fMax,
		GoodMax:           bMin,
		ForwardTolerance:  fMax - fMin,
		BackwardTolerance: bMax - bMin,
	}
}

// GetTorsoRange returns the side-view torso good-angle window with its
// forward/backward tolerances derived from the configured bands.
func (c *PostureConfig) GetTorsoRange() engine.AngleRange {
	fMin := f64(c.TorsoForwardMinDeg, 80.0)
	fMax := f64(c.TorsoForwardMaxDeg, 90.0)
	bMin := f64(c.TorsoBackwardMinDeg, 90.0)
	bMax := f64(c.TorsoBackwardMaxDeg, 105.0)
	return engine.AngleRange{
		GoodMin:           fMax,
		GoodMax:           bMin,
		ForwardTolerance:  fMax - fMin,
		BackwardTolerance: bMax - bMin,
	}
}

// GetBadPostureAlertTime returns the bad-posture debounce duration.
func (c *PostureConfig) GetBadPostureAlertTime() time.Duration {
	return duration(c.BadPostureAlertTime, 10*time.Second)
}

// GetSeatedAlertTime returns the seated-too-long duration.
func (c *PostureConfig) GetSeatedAlertTime() time.Duration {
	return duration(c.SeatedAlertTime, 45*time.Minute)
}

// GetFocusMinTime returns the stillness duration for the focused flag.
func (c *PostureConfig) GetFocusMinTime() time.Duration {
	return duration(c.FocusMinTime, 5*time.Minute)
}

// GetHeadMovementThreshDeg returns the focus movement threshold.
func (c *PostureConfig) GetHeadMovementThreshDeg() float64 {
	return f64(c.HeadMovementThreshDeg, 3.0)
}

// GetGoodScoreBoundary returns the GOOD/BAD classification boundary.
func (c *PostureConfig) GetGoodScoreBoundary() float64 {
	return f64(c.GoodScoreBoundary, 60.0)
}

// EngineParams assembles the engine configuration from the tuning values.
func (c *PostureConfig) EngineParams() engine.Params {
	view := c.GetCameraView()
	return engine.Params{
		View:                  view,
		MinKeypointConfidence: c.GetMinKeypointConfidence(),
		Scorer: engine.ScorerConfig{
			View:                view,
			GoodScoreBoundary:   c.GetGoodScoreBoundary(),
			NeckFlexBadDeg:      c.GetNeckFlexBadDeg(),
			TorsoCompressionBad: c.GetTorsoCompressionBad(),
			TorsoRollBadDeg:     c.GetTorsoRollBadDeg(),
			FrontWeights:        c.GetFrontWeights(),
			NeckRange:           c.GetNeckRange(),
			TorsoRange:          c.GetTorsoRange(),
			SideWeights:         c.GetSideWeights(),
		},
		Monitor: engine.MonitorConfig{
			BadPostureAlertAfter:  c.GetBadPostureAlertTime(),
			SeatedAlertAfter:      c.GetSeatedAlertTime(),
			FocusAfter:            c.GetFocusMinTime(),
			HeadMovementThreshDeg: c.GetHeadMovementThreshDeg(),
		},
	}
}
