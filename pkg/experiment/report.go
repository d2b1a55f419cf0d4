package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteJSON saves a result document (LevelSummary or []SpeedPoint)
// as indented JSON.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSpeedChart renders the level 3 sweep as an HTML line chart of
// average collisions against obstacle speed.
func RenderSpeedChart(points []SpeedPoint, w io.Writer) error {
	x := make([]string, 0, len(points))
	y := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		x = append(x, fmt.Sprintf("%.2f", p.Speed))
		y = append(y, opts.LineData{Value: p.AvgCollisions})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Obstacle Speed Sweep",
			Width:     "900px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Average collisions vs obstacle speed",
			Subtitle: fmt.Sprintf("%d speeds, 4 corners each", len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "speed (units/tick)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "avg collisions"}),
	)
	line.SetXAxis(x).AddSeries("avg collisions", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render speed chart: %w", err)
	}
	return nil
}

// SaveSpeedChart renders the sweep chart to an HTML file.
func SaveSpeedChart(points []SpeedPoint, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return RenderSpeedChart(points, f)
}
