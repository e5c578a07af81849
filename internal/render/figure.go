// Package render turns loaded arrays into a scatter plot and delivers it to
// a sink: a desktop window, a file, or an HTTP page.
package render

import (
	"fmt"
	"image/color"

	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/vector"
)

// Marker is the glyph drawn for each point of a series.
type Marker string

const (
	MarkerCircle Marker = "o"
	MarkerCross  Marker = "x"
)

// Series labels.
const (
	LabelData     = "data"
	LabelCentroid = "centroid"
)

var (
	colorBlue   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorOrange = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

// Point is one plotted position.
type Point struct {
	X, Y float64
}

// Series is one labelled set of points sharing a marker.
type Series struct {
	Label  string
	Marker Marker
	Color  color.RGBA
	Points []Point
}

// Figure describes everything needed to draw the plot, independent of backend.
type Figure struct {
	Title  string
	Series []Series
	Grid   bool
	Legend bool

	XMin, XMax float64
	YMin, YMax float64

	WidthPx  int
	HeightPx int
	DPI      int
}

// NewFigure overlays the dataset (circles) and the centroids (crosses) using
// the first two columns of each as x and y.
func NewFigure(dataset, centroids *vector.Matrix, cfg config.RenderConfig) (*Figure, error) {
	if dataset.Cols() < 2 || centroids.Cols() < 2 {
		return nil, fmt.Errorf("scatter plot needs 2 columns, got %d and %d", dataset.Cols(), centroids.Cols())
	}
	return &Figure{
		Title: cfg.Title,
		Series: []Series{
			{Label: LabelData, Marker: MarkerCircle, Color: colorBlue, Points: points(dataset)},
			{Label: LabelCentroid, Marker: MarkerCross, Color: colorOrange, Points: points(centroids)},
		},
		Grid:     true,
		Legend:   true,
		XMin:     cfg.XMin,
		XMax:     cfg.XMax,
		YMin:     cfg.YMin,
		YMax:     cfg.YMax,
		WidthPx:  cfg.WidthPx,
		HeightPx: cfg.HeightPx,
		DPI:      cfg.DPI,
	}, nil
}

func points(m *vector.Matrix) []Point {
	xs, ys := m.Column(0), m.Column(1)
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pts
}

// Contains reports whether p lies within the axis limits.
func (f *Figure) Contains(p Point) bool {
	return p.X >= f.XMin && p.X <= f.XMax && p.Y >= f.YMin && p.Y <= f.YMax
}

// Outside counts the points of series i that fall outside the axis limits.
func (f *Figure) Outside(i int) int {
	n := 0
	for _, p := range f.Series[i].Points {
		if !f.Contains(p) {
			n++
		}
	}
	return n
}
