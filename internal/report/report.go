// Package report renders session posture history as standalone HTML charts.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/db"
)

// RenderScoreChart writes an HTML line chart of score over time for one
// session. goodBoundary draws the GOOD/BAD threshold as a horizontal mark
// line.
func RenderScoreChart(w io.Writer, sessionID string, points []db.ScorePoint, goodBoundary float64) error {
	x := make([]string, 0, len(points))
	y := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		x = append(x, p.Timestamp.Format(time.TimeOnly))
		y = append(y, opts.LineData{Value: p.Score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Posture Score", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Posture Score", Subtitle: fmt.Sprintf("session=%s frames=%d", sessionID, len(points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 100}),
	)

	line.SetXAxis(x).
		AddSeries("score", y, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})).
		SetSeriesOptions(
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "good", YAxis: goodBoundary}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{Symbol: []string{"none", "none"}}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render score chart: %w", err)
	}
	return nil
}
