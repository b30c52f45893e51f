package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/db"
)

func TestRenderScoreChart(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	points := []db.ScorePoint{
		{Timestamp: start, Score: 85},
		{Timestamp: start.Add(time.Second), Score: 52},
		{Timestamp: start.Add(2 * time.Second), Score: 71},
	}

	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, "sess-1", points, 60); err != nil {
		t.Fatalf("RenderScoreChart failed: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "echarts") {
		t.Error("expected rendered HTML to reference echarts")
	}
	if !strings.Contains(html, "sess-1") {
		t.Error("expected rendered HTML to mention the session id")
	}
}

func TestRenderScoreChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, "sess-1", nil, 60); err != nil {
		t.Fatalf("RenderScoreChart failed on empty series: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty output for empty series")
	}
}
