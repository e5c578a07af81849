package render

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// crossSymbol is an x-shaped marker; echarts has no built-in one.
const crossSymbol = "path://M2,0 L5,3 L8,0 L10,2 L7,5 L10,8 L8,10 L5,7 L2,10 L0,8 L3,5 L0,2 Z"

const symbolSize = 8

// Chart builds an interactive echarts scatter for the figure.
func (f *Figure) Chart() *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: f.Title,
			Width:     fmt.Sprintf("%dpx", f.WidthPx),
			Height:    fmt.Sprintf("%dpx", f.HeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: f.Legend, Right: "5%", Top: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Min:       f.XMin,
			Max:       f.XMax,
			SplitLine: &opts.SplitLine{Show: f.Grid},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Min:       f.YMin,
			Max:       f.YMax,
			SplitLine: &opts.SplitLine{Show: f.Grid},
		}),
	)

	for _, s := range f.Series {
		symbol := "circle"
		if s.Marker == MarkerCross {
			symbol = crossSymbol
		}
		items := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			items = append(items, opts.ScatterData{
				Value:      []interface{}{p.X, p.Y},
				Symbol:     symbol,
				SymbolSize: symbolSize,
			})
		}
		scatter.AddSeries(s.Label, items,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(s)}),
		)
	}
	return scatter
}

func hexColor(s Series) string {
	return fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
}
