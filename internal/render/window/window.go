// Package window shows a figure in a desktop window.
package window

import (
	"context"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kmviz/kmviz/internal/render"
)

// Display is the interactive window sink. Render blocks until the user
// closes the window or ctx is done. Only one Display may run per process.
type Display struct {
	Title string
}

// New returns a Display titled title. It satisfies render.WindowFactory.
func New(title string) render.Sink {
	return &Display{Title: title}
}

func (d *Display) Name() string { return "window" }

func (d *Display) Render(ctx context.Context, fig *render.Figure) error {
	img, err := fig.Image()
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	b := img.Bounds()

	ebiten.SetWindowTitle(d.Title)
	ebiten.SetWindowSize(b.Dx(), b.Dy())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(30)

	if err := ebiten.RunGame(newPlotGame(ctx, img)); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return ctx.Err()
}

type plotGame struct {
	ctx context.Context
	src image.Image
	img *ebiten.Image
}

func newPlotGame(ctx context.Context, src image.Image) *plotGame {
	return &plotGame{ctx: ctx, src: src}
}

func (g *plotGame) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *plotGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImageFromImage(g.src)
	}
	screen.DrawImage(g.img, nil)
}

// Layout keeps the logical screen at the plot's pixel size; ebiten scales
// it to the window.
func (g *plotGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.src.Bounds()
	return b.Dx(), b.Dy()
}
