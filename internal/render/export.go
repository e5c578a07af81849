package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ErrUnsupportedFormat is returned for an output path whose extension has no
// encoder.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formats lists the extensions FileExport can write.
var Formats = []string{".png", ".jpg", ".jpeg", ".svg", ".pdf", ".html"}

// FileExport writes the figure to Path. The extension picks the encoder.
type FileExport struct {
	Path string
}

func (e *FileExport) Name() string { return "file" }

func (e *FileExport) Render(ctx context.Context, fig *Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(e.Path))
	if !SupportedFormat(ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if dir := filepath.Dir(e.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	// Write to a temp file in the same directory so a failed render never
	// leaves a truncated image behind.
	tmp, err := os.CreateTemp(filepath.Dir(e.Path), ".kmviz-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, fig, ext); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.Path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// SupportedFormat reports whether ext (with leading dot) can be exported.
func SupportedFormat(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

// Encode writes the figure to w in the format named by ext.
func Encode(w io.Writer, fig *Figure, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		c, err := fig.rasterCanvas()
		if err != nil {
			return err
		}
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		return err
	case ".jpg", ".jpeg":
		c, err := fig.rasterCanvas()
		if err != nil {
			return err
		}
		_, err = vgimg.JpegCanvas{Canvas: c}.WriteTo(w)
		return err
	case ".svg":
		p, err := fig.Plot()
		if err != nil {
			return err
		}
		wd, ht := fig.size()
		c := vgsvg.New(wd, ht)
		p.Draw(draw.New(c))
		_, err = c.WriteTo(w)
		return err
	case ".pdf":
		p, err := fig.Plot()
		if err != nil {
			return err
		}
		wd, ht := fig.size()
		c := vgpdf.New(wd, ht)
		p.Draw(draw.New(c))
		_, err = c.WriteTo(w)
		return err
	case ".html":
		return fig.Chart().Render(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
