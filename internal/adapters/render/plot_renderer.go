package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"pipeline-profile-service/internal/domain"
)

var (
	groundColor    = color.RGBA{R: 139, G: 94, B: 60, A: 255}
	pipeColor      = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	hydraulicColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	bandColor      = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	equipColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// PlotRenderer draws a static preview: band windows, the three curves,
// micro-break markers and equipment, in distance/elevation space.
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: 14 * vg.Inch, Height: 6 * vg.Inch}
}

func (r *PlotRenderer) Formats() []string { return []string{"png", "svg"} }

func (r *PlotRenderer) Render(w io.Writer, res *domain.ProfileResult, format string) error {
	if format != "png" && format != "svg" {
		return fmt.Errorf("plot renderer: %w: %q", ErrUnsupportedFormat, format)
	}
	if err := checkResult(res); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Route %s", res.Route)
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "Elevation (m)"
	p.Add(plotter.NewGrid())

	for i, b := range res.Bands.Bands {
		start, end := res.Bands.Range(i)
		base, top := float64(b.Base), float64(b.Top)
		outline := plotter.XYs{{X: start, Y: base}, {X: start, Y: top}, {X: end, Y: top}, {X: end, Y: base}, {X: start, Y: base}}
		if err := addLine(p, outline, bandColor, 0.5, nil, ""); err != nil {
			return err
		}
	}

	for i, seg := range res.Ground {
		if err := addLine(p, toXYs(seg.Vertices), groundColor, 1.5, nil, legendOnce(i, "Ground")); err != nil {
			return err
		}
	}
	for i, seg := range res.Pipe {
		if err := addLine(p, toXYs(seg.Vertices), pipeColor, 1.5, nil, legendOnce(i, "Pipe")); err != nil {
			return err
		}
	}
	dashed := []vg.Length{vg.Points(4), vg.Points(2)}
	for i, seg := range res.Hydraulic.Segments {
		if err := addLine(p, toXYs(seg.Vertices), hydraulicColor, 1, dashed, legendOnce(i, "Hydraulic")); err != nil {
			return err
		}
	}
	for _, m := range res.Hydraulic.Markers {
		marker := plotter.XYs{{X: m.Distance, Y: m.FromLevel}, {X: m.Distance, Y: m.ToLevel}}
		if err := addLine(p, marker, hydraulicColor, 0.75, nil, ""); err != nil {
			return err
		}
	}

	if len(res.Equipment) > 0 {
		pts := make(plotter.XYs, 0, len(res.Equipment))
		labels := make([]string, 0, len(res.Equipment))
		for _, pe := range res.Equipment {
			pts = append(pts, plotter.XY{X: pe.Item.Distance(), Y: pe.PipeElevation})
			labels = append(labels, equipmentLabel(pe.Item))
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("plot renderer: equipment: %w", err)
		}
		sc.GlyphStyle.Color = equipColor
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("Equipment", sc)

		lb, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
		if err != nil {
			return fmt.Errorf("plot renderer: equipment labels: %w", err)
		}
		p.Add(lb)
	}

	wt, err := p.WriterTo(r.Width, r.Height, format)
	if err != nil {
		return fmt.Errorf("plot renderer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("plot renderer: write %s: %w", format, err)
	}
	return nil
}

func addLine(p *plot.Plot, xys plotter.XYs, c color.Color, width float64, dashes []vg.Length, legend string) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("plot renderer: line: %w", err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(width)
	l.LineStyle.Dashes = dashes
	p.Add(l)
	if legend != "" {
		p.Legend.Add(legend, l)
	}
	return nil
}

func legendOnce(i int, name string) string {
	if i == 0 {
		return name
	}
	return ""
}

func toXYs(pl domain.Polyline) plotter.XYs {
	xys := make(plotter.XYs, len(pl))
	for i, v := range pl {
		xys[i] = plotter.XY{X: v.Distance, Y: v.Elevation}
	}
	return xys
}
