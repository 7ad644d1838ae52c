// Image compositor: crop, background placement, text rendering and overlay
// for one (image, locale) pair. Produces in-memory buffers only; writing is
// the exporter's job.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/layout"
)

// ErrEmptyCrop reports crop insets that leave no pixels. Fatal for the
// single image, never for the batch.
var ErrEmptyCrop = errors.New("crop insets leave no pixels")

// Compositor applies the configured composition steps. Background and
// overlay images are loaded once at construction and shared read-only
// across pairs.
type Compositor struct {
	cfg        *entity.CompositionConfig
	background image.Image
	overlay    image.Image
	log        *logrus.Logger
}

// New builds a compositor for cfg, loading the background and overlay
// images from inputDir. An unreadable background or overlay disables that
// single step with an error log, matching the soft-degrade contract of the
// config model.
func New(cfg *entity.CompositionConfig, inputDir string, log *logrus.Logger) *Compositor {
	c := &Compositor{cfg: cfg, log: log}

	if cfg.Background != nil {
		img, err := imaging.Open(filepath.Join(inputDir, cfg.Background.File))
		if err != nil {
			log.Errorf("background image not loaded: %v; background placement disabled", err)
		} else {
			c.background = img
		}
	}
	if cfg.Overlay != nil {
		img, err := imaging.Open(filepath.Join(inputDir, cfg.Overlay.File))
		if err != nil {
			log.Errorf("overlay image not loaded: %v; overlay disabled", err)
		} else {
			c.overlay = img
		}
	}
	return c
}

// Compose runs the pipeline on src: crop, resize onto the background,
// optional cropped snapshot, text, overlay. The face may be nil when no
// text is drawn. The final canvas has the background's dimensions when a
// background is configured, the cropped image's otherwise.
func (c *Compositor) Compose(src image.Image, text string, face font.Face) (*entity.CompositeArtifact, error) {
	cropped, err := c.crop(src)
	if err != nil {
		return nil, err
	}

	canvas := cropped
	if c.background != nil {
		bg := c.cfg.Background
		resized := imaging.Resize(cropped, bg.Size.Width, bg.Size.Height, imaging.Lanczos)
		canvas = imaging.Paste(imaging.Clone(c.background), resized, image.Pt(bg.Position.X, bg.Position.Y))
	}

	artifact := &entity.CompositeArtifact{}
	if c.cfg.Export.KeepCropped {
		artifact.Cropped = imaging.Clone(canvas)
	}

	if c.cfg.Text != nil && text != "" && face != nil {
		c.drawText(canvas, text, face)
	}

	if c.overlay != nil {
		ov := c.cfg.Overlay
		canvas = imaging.Overlay(canvas, c.overlay, image.Pt(ov.Position.X, ov.Position.Y), 1.0)
	}

	artifact.Canvas = canvas
	return artifact, nil
}

func (c *Compositor) crop(src image.Image) (*image.NRGBA, error) {
	b := src.Bounds()
	cr := c.cfg.Crop

	left := cr.Left
	top := cr.Top
	right := b.Dx() - cr.Right
	bottom := b.Dy() - cr.Bottom
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: insets (%d,%d,%d,%d) on %dx%d image",
			ErrEmptyCrop, cr.Top, cr.Left, cr.Right, cr.Bottom, b.Dx(), b.Dy())
	}
	return imaging.Crop(src, image.Rect(left, top, right, bottom)), nil
}

func (c *Compositor) drawText(canvas *image.NRGBA, text string, face font.Face) {
	t := c.cfg.Text

	res := layout.Layout(text, face, t.Width)
	if len(res.Lines) == 0 {
		return
	}
	origins := res.Origins(layout.Box{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}, t.Align, t.VAlign)

	ascent := face.Metrics().Ascent
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: t.Color.R, G: t.Color.G, B: t.Color.B, A: 255}),
		Face: face,
	}
	for i, ln := range res.Lines {
		if ln.Text == "" {
			continue
		}
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(origins[i].X),
			Y: fixed.I(origins[i].Y) + ascent,
		}
		drawer.DrawString(ln.Text)
	}
}
