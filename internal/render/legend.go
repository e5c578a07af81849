package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	legendFill   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xcc}
	legendBorder = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
)

const (
	legendPad   = vg.Length(4)
	legendThumb = vg.Length(14)
)

type legendEntry struct {
	label string
	thumb plot.Thumbnailer
}

// legendBox draws a framed legend in the top-right corner of the data area.
// It has no data range, so it never moves the axes.
type legendBox struct {
	style   text.Style
	entries []legendEntry
}

func newLegendBox(style text.Style) *legendBox {
	style.XAlign = text.XLeft
	style.YAlign = text.YCenter
	return &legendBox{style: style}
}

func (l *legendBox) add(label string, thumb plot.Thumbnailer) {
	l.entries = append(l.entries, legendEntry{label: label, thumb: thumb})
}

func (l *legendBox) rowHeight() vg.Length {
	return l.style.Height("M") + legendPad/2
}

// rect returns the frame for the data canvas c.
func (l *legendBox) rect(c draw.Canvas) vg.Rectangle {
	var labelW vg.Length
	for _, e := range l.entries {
		if w := l.style.Width(e.label); w > labelW {
			labelW = w
		}
	}
	w := 3*legendPad + legendThumb + labelW
	h := 2*legendPad + vg.Length(len(l.entries))*l.rowHeight()

	maxPt := vg.Point{X: c.Max.X - legendPad, Y: c.Max.Y - legendPad}
	return vg.Rectangle{
		Min: vg.Point{X: maxPt.X - w, Y: maxPt.Y - h},
		Max: maxPt,
	}
}

func (l *legendBox) Plot(c draw.Canvas, _ *plot.Plot) {
	if len(l.entries) == 0 {
		return
	}
	r := l.rect(c)
	corners := []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
	c.FillPolygon(legendFill, corners)
	c.StrokeLines(draw.LineStyle{Color: legendBorder, Width: vg.Points(1)}, append(corners, r.Min))

	rowH := l.rowHeight()
	for i, e := range l.entries {
		top := r.Max.Y - legendPad - vg.Length(i)*rowH
		thumbX := r.Min.X + legendPad
		e.thumb.Thumbnail(&draw.Canvas{
			Canvas: c.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: thumbX, Y: top - rowH},
				Max: vg.Point{X: thumbX + legendThumb, Y: top},
			},
		})
		c.FillText(l.style, vg.Point{X: thumbX + legendThumb + legendPad, Y: top - rowH/2}, e.label)
	}
}
