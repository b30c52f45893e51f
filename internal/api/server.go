// Package api exposes the posture monitor over HTTP: the live snapshot, the
// session history, and the report chart.
package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/db"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/httputil"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/report"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/snapshot"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// ResetFunc asks the pipeline to start a new session and returns the new
// session id. Implementations run on the pipeline goroutine; the call blocks
// until the reset is applied.
type ResetFunc func() (string, error)

// SessionFunc returns the id of the session currently being recorded.
type SessionFunc func() string

type Server struct {
	holder       *snapshot.Holder
	db           *db.DB
	reset        ResetFunc
	session      SessionFunc
	goodBoundary float64
}

func NewServer(holder *snapshot.Holder, database *db.DB, reset ResetFunc, session SessionFunc, goodBoundary float64) *Server {
	return &Server{
		holder:       holder,
		db:           database,
		reset:        reset,
		session:      session,
		goodBoundary: goodBoundary,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/pose", s.showPose)
	mux.HandleFunc("/posture", s.showPosture)
	mux.HandleFunc("/video", s.showVideo)
	mux.HandleFunc("/report", s.showReport)
	mux.HandleFunc("/api/sessions", s.listSessions)
	mux.HandleFunc("/api/session_stats", s.showSessionStats)
	mux.HandleFunc("/api/session/reset", s.resetSession)
	return mux
}

// showPose returns the latest keypoints with the score summary, or a
// warming-up status before the first frame has been assessed.
func (s *Server) showPose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap, ok := s.holder.Latest()
	if !ok {
		httputil.WriteJSONOK(w, map[string]string{"status": "warming_up"})
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":       "ok",
		"timestamp":    snap.Timestamp,
		"keypoints":    snap.Pose,
		"score_result": snap.Assessment.Result,
		"alerts":       snap.Assessment.Alerts,
	})
}

// showPosture returns the full latest assessment including extracted features.
func (s *Server) showPosture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap, ok := s.holder.Latest()
	if !ok {
		httputil.WriteJSONOK(w, map[string]string{"status": "warming_up"})
		return
	}

	httputil.WriteJSONOK(w, snap.Assessment)
}

// showVideo is a placeholder: frame streaming stays on the capture device.
func (s *Server) showVideo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONError(w, http.StatusNotImplemented, "video streaming is not available on this host")
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sessions, err := s.db.Sessions()
	if err != nil {
		log.Printf("failed to list sessions: %v", err)
		httputil.InternalServerError(w, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []db.Session{}
	}
	httputil.WriteJSONOK(w, sessions)
}

func (s *Server) showSessionStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = s.session()
	}

	stats, err := s.db.SessionStats(sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.NotFound(w, "no assessments for session "+sessionID)
		return
	}
	if err != nil {
		log.Printf("failed to compute session stats: %v", err)
		httputil.InternalServerError(w, "failed to compute session stats")
		return
	}
	httputil.WriteJSONOK(w, stats)
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	newID, err := s.reset()
	if err != nil {
		log.Printf("failed to reset session: %v", err)
		httputil.InternalServerError(w, "failed to reset session")
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"status": "reset", "session_id": newID})
}

func (s *Server) showReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = s.session()
	}

	points, err := s.db.ScorePoints(sessionID)
	if err != nil {
		log.Printf("failed to load score points: %v", err)
		httputil.InternalServerError(w, "failed to load score points")
		return
	}
	if len(points) == 0 {
		httputil.NotFound(w, "no assessments for session "+sessionID)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderScoreChart(w, sessionID, points, s.goodBoundary); err != nil {
		log.Printf("failed to render report: %v", err)
	}
}
