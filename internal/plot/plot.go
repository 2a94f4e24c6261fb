package plot

import (
	"fmt"
	"image/color"
	"path/filepath"

	"TrafficScope/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Stable chart file names inside the run's plots directory.
const (
	MinuteTrafficFile   = "minute_traffic.png"
	HourTrafficFile     = "hour_traffic.png"
	DayTrafficFile      = "day_traffic.png"
	MinuteAnomaliesFile = "minute_anomalies.png"
	HourAnomaliesFile   = "hour_anomalies.png"
)

// Traffic renders the three traffic-volume-over-time charts.
func Traffic(minute, hour, day model.TrafficSeries, plotsDir string) error {
	charts := []struct {
		series model.TrafficSeries
		title  string
		file   string
	}{
		{minute, "Traffic Per Minute", MinuteTrafficFile},
		{hour, "Traffic Per Hour", HourTrafficFile},
		{day, "Traffic Per Day", DayTrafficFile},
	}
	for _, c := range charts {
		if err := render(c.series, c.title, filepath.Join(plotsDir, c.file), false); err != nil {
			return err
		}
	}
	return nil
}

// Anomalies renders the anomaly-highlighted charts for the minute and hour
// series. The day series is too coarse to be worth highlighting.
func Anomalies(minute, hour model.TrafficSeries, plotsDir string) error {
	if err := render(minute, "Minute-Level Anomalies", filepath.Join(plotsDir, MinuteAnomaliesFile), true); err != nil {
		return err
	}
	return render(hour, "Hour-Level Anomalies", filepath.Join(plotsDir, HourAnomaliesFile), true)
}

// render draws one series as a time/count line chart, optionally overlaying
// flagged buckets as red markers, and saves it as a PNG.
func render(series model.TrafficSeries, title, path string, highlight bool) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = series.CountField
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(series.Points))
	for i, pt := range series.Points {
		xys[i].X = float64(pt.Window.Unix())
		xys[i].Y = float64(pt.Count)
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to build line for %q: %w", title, err)
	}
	line.Color = color.RGBA{B: 180, A: 255}
	p.Add(line)
	p.Legend.Add(series.CountField, line)

	if highlight {
		var flagged plotter.XYs
		for _, pt := range series.Points {
			if pt.Anomaly {
				flagged = append(flagged, plotter.XY{
					X: float64(pt.Window.Unix()),
					Y: float64(pt.Count),
				})
			}
		}
		if len(flagged) > 0 {
			scatter, err := plotter.NewScatter(flagged)
			if err != nil {
				return fmt.Errorf("failed to build scatter for %q: %w", title, err)
			}
			scatter.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
			scatter.GlyphStyle.Radius = vg.Points(4)
			p.Add(scatter)
			p.Legend.Add("anomaly", scatter)
		}
	}

	if err := p.Save(12*vg.Inch, 4*vg.Inch, path); err != nil {
		return &model.IOError{Op: "save chart", Path: path, Err: err}
	}
	return nil
}
