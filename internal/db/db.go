// Package db persists posture sessions and per-frame assessments in sqlite
// and serves the rollup queries behind the stats API.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/engine"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path. Schema is managed by
// MigrateUp, not here.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single pipeline writer plus HTTP readers; WAL keeps readers from
	// blocking the frame loop.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{db}, nil
}

// Session is one monitoring session: from monitor construction to reset or
// process exit.
type Session struct {
	ID         string     `json:"session_id"`
	CameraView string     `json:"camera_view"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// CreateSession records the start of a monitoring session.
func (db *DB) CreateSession(id, cameraView string, startedAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, camera_view, started_at) VALUES (?, ?, ?)`,
		id, cameraView, unixFloat(startedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// CloseSession records the end of a monitoring session.
func (db *DB) CloseSession(id string, endedAt time.Time) error {
	_, err := db.Exec(
		`UPDATE sessions SET ended_at = ? WHERE session_id = ?`,
		unixFloat(endedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// Sessions returns all sessions, most recent first.
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.Query(
		`SELECT session_id, camera_view, started_at, ended_at FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var started float64
		var ended sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.CameraView, &started, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartedAt = timeFromUnixFloat(started)
		if ended.Valid {
			t := timeFromUnixFloat(ended.Float64)
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// RecordAssessment persists one frame's assessment for the given session.
func (db *DB) RecordAssessment(sessionID string, a engine.Assessment) error {
	reasons, err := json.Marshal(a.Result.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO assessments
			(session_id, ts, score, classification,
			 subscore_neck, subscore_torso, subscore_roll,
			 reasons, bad_alert, seated_alert, focused)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		unixFloat(a.Timestamp),
		a.Result.Score,
		string(a.Result.Classification),
		nullableSubscore(a.Result.Subscores, engine.SubscoreNeck),
		nullableSubscore(a.Result.Subscores, engine.SubscoreTorso),
		nullableSubscore(a.Result.Subscores, engine.SubscoreRoll),
		string(reasons),
		boolInt(a.Alerts.BadPosture),
		boolInt(a.Alerts.Seated),
		boolInt(a.Alerts.Focused),
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

// ScorePoint is one (time, score) sample for charting.
type ScorePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// ScorePoints returns the score time series for a session, oldest first.
func (db *DB) ScorePoints(sessionID string) ([]ScorePoint, error) {
	rows, err := db.Query(
		`SELECT ts, score FROM assessments WHERE session_id = ? ORDER BY ts ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query score points: %w", err)
	}
	defer rows.Close()

	var points []ScorePoint
	for rows.Next() {
		var ts, score float64
		if err := rows.Scan(&ts, &score); err != nil {
			return nil, fmt.Errorf("failed to scan score point: %w", err)
		}
		points = append(points, ScorePoint{Timestamp: timeFromUnixFloat(ts), Score: score})
	}
	return points, rows.Err()
}

// SessionStats is the rollup of a session's assessments.
type SessionStats struct {
	SessionID   string  `json:"session_id"`
	TotalFrames int     `json:"total_frames"`
	BadFrames   int     `json:"bad_frames"`
	AlertFrames int     `json:"alert_frames"`
	MinScore    float64 `json:"min_score"`
	P50Score    float64 `json:"p50_score"`
	P85Score    float64 `json:"p85_score"`
	MaxScore    float64 `json:"max_score"`
}

// SessionStats computes score percentiles and bad-posture counts for one
// session. Returns sql.ErrNoRows when the session has no assessments.
func (db *DB) SessionStats(sessionID string) (*SessionStats, error) {
	rows, err := db.Query(
		`SELECT score, classification, bad_alert FROM assessments WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	stats := &SessionStats{SessionID: sessionID}
	var scores []float64
	for rows.Next() {
		var score float64
		var classification string
		var badAlert int
		if err := rows.Scan(&score, &classification, &badAlert); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		scores = append(scores, score)
		if classification == string(engine.ClassificationBad) {
			stats.BadFrames++
		}
		if badAlert != 0 {
			stats.AlertFrames++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, sql.ErrNoRows
	}

	sort.Float64s(scores)
	stats.TotalFrames = len(scores)
	stats.MinScore = scores[0]
	stats.MaxScore = scores[len(scores)-1]
	stats.P50Score = stat.Quantile(0.50, stat.Empirical, scores, nil)
	stats.P85Score = stat.Quantile(0.85, stat.Empirical, scores, nil)

	return stats, nil
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnixFloat(f float64) time.Time {
	return time.Unix(0, int64(f*1e9)).UTC()
}

func nullableSubscore(subscores map[string]float64, name string) interface{} {
	if v, ok := subscores[name]; ok {
		return v
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
