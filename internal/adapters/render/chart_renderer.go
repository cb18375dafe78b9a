package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"pipeline-profile-service/internal/domain"
)

// ChartRenderer writes an interactive HTML profile chart.
type ChartRenderer struct {
	// AssetsHost overrides where the echarts scripts are loaded from.
	AssetsHost string
}

func NewChartRenderer() *ChartRenderer { return &ChartRenderer{} }

func (r *ChartRenderer) Formats() []string { return []string{"html"} }

func (r *ChartRenderer) Render(w io.Writer, res *domain.ProfileResult, format string) error {
	if format != "html" {
		return fmt.Errorf("chart renderer: %w: %q", ErrUnsupportedFormat, format)
	}
	if err := checkResult(res); err != nil {
		return err
	}

	s := res.Summary
	initOpts := opts.Initialization{PageTitle: "Profile " + res.Route, Width: "100%", Height: "720px"}
	if r.AssetsHost != "" {
		initOpts.AssetsHost = r.AssetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{
			Title:    "Route " + res.Route,
			Subtitle: fmt.Sprintf("length=%.2f m bands=%d micro-breaks=%d", s.Length, s.BandCount, s.MicroBreaks),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Elevation (m)", Min: "dataMin", Max: "dataMax"}),
	)

	// Series sharing a name share one legend entry, so every segment stays separate.
	for _, seg := range res.Ground {
		line.AddSeries("Ground", lineData(seg.Vertices))
	}
	for _, seg := range res.Pipe {
		line.AddSeries("Pipe", lineData(seg.Vertices))
	}
	for _, seg := range res.Hydraulic.Segments {
		line.AddSeries("Hydraulic", lineData(seg.Vertices))
	}
	for i, b := range res.Bands.Bands {
		start, end := res.Bands.Range(i)
		top := float64(b.Top)
		line.AddSeries("Band top", []opts.LineData{{Value: []interface{}{start, top}}, {Value: []interface{}{end, top}}})
	}

	if len(res.Equipment) > 0 {
		pts := make([]opts.ScatterData, 0, len(res.Equipment))
		for _, pe := range res.Equipment {
			pts = append(pts, opts.ScatterData{
				Name:  equipmentLabel(pe.Item),
				Value: []interface{}{pe.Item.Distance(), pe.PipeElevation},
			})
		}
		sc := charts.NewScatter()
		sc.AddSeries("Equipment", pts)
		line.Overlap(sc)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("chart renderer: %w", err)
	}
	return nil
}

func lineData(pl domain.Polyline) []opts.LineData {
	out := make([]opts.LineData, len(pl))
	for i, v := range pl {
		out[i] = opts.LineData{Value: []interface{}{v.Distance, v.Elevation}}
	}
	return out
}
