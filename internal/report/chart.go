package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderOccupancy writes an HTML bar chart of per-slot occupancy.
func RenderOccupancy(w io.Writer, s *Summary, title string) error {
	labels := make([]string, 0, len(s.Slots))
	ints := make([]opts.BarData, 0, len(s.Slots))
	floats := make([]opts.BarData, 0, len(s.Slots))
	for _, ss := range s.Slots {
		labels = append(labels, ss.Label())
		// Each series only carries its own kind; the other kind is left blank.
		if ss.Kind == KindInt {
			ints = append(ints, opts.BarData{Value: ss.Occupancy})
			floats = append(floats, opts.BarData{Value: "-"})
		} else {
			ints = append(ints, opts.BarData{Value: "-"})
			floats = append(floats, opts.BarData{Value: ss.Occupancy})
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("frames=%d mean occupancy=%.3f", s.Frames, s.MeanOccupancy),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "occupancy", Min: 0, Max: 1}),
	)
	bar.SetXAxis(labels).
		AddSeries("int slots", ints, charts.WithBarChartOpts(opts.BarChart{Stack: "slots"})).
		AddSeries("float slots", floats, charts.WithBarChartOpts(opts.BarChart{Stack: "slots"}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render occupancy chart: %w", err)
	}
	return nil
}
