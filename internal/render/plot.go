package render

import (
	"fmt"
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// glyphRadius matches a 6pt marker.
var glyphRadius = vg.Points(3)

// Plot builds the gonum plot for the figure with fixed axis limits.
func (f *Figure) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title

	if f.Grid {
		p.Add(plotter.NewGrid())
	}

	legend := newLegendBox(p.Legend.TextStyle)
	for _, s := range f.Series {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  s.Color,
			Radius: glyphRadius,
			Shape:  glyphFor(s.Marker),
		}
		p.Add(sc)
		legend.add(s.Label, sc)
	}
	// drawn last so the box sits above the points
	if f.Legend {
		p.Add(legend)
	}

	// Add widens the axes to the data; the limits are fixed afterwards.
	p.X.Min, p.X.Max = f.XMin, f.XMax
	p.Y.Min, p.Y.Max = f.YMin, f.YMax
	return p, nil
}

func glyphFor(m Marker) draw.GlyphDrawer {
	switch m {
	case MarkerCross:
		return draw.CrossGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

// size returns the canvas size in vg units for the configured pixels and DPI.
func (f *Figure) size() (vg.Length, vg.Length) {
	dpi := f.DPI
	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	w := vg.Length(f.WidthPx) / vg.Length(dpi) * vg.Inch
	h := vg.Length(f.HeightPx) / vg.Length(dpi) * vg.Inch
	return w, h
}

func (f *Figure) rasterCanvas() (*vgimg.Canvas, error) {
	p, err := f.Plot()
	if err != nil {
		return nil, err
	}
	w, h := f.size()
	dpi := f.DPI
	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	return c, nil
}

// Image rasterizes the figure.
func (f *Figure) Image() (image.Image, error) {
	c, err := f.rasterCanvas()
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}
