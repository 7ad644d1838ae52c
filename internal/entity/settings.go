// Typed settings for the composition pipeline, decoded from screenshot-cropper.json.
package entity

import (
	"github.com/sirupsen/logrus"
)

// Alignment values accepted by TextSettings.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	VAlignTop    = "top"
	VAlignMiddle = "middle"
	VAlignBottom = "bottom"
)

// Export formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

type Position struct {
	X int `mapstructure:"x" json:"x"`
	Y int `mapstructure:"y" json:"y"`
}

type Size struct {
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

type RGBColor struct {
	R uint8 `mapstructure:"r" json:"r"`
	G uint8 `mapstructure:"g" json:"g"`
	B uint8 `mapstructure:"b" json:"b"`
}

// CropSettings are pixel insets removed from each edge of the source image.
type CropSettings struct {
	Top    int `mapstructure:"top" json:"top"`
	Left   int `mapstructure:"left" json:"left"`
	Right  int `mapstructure:"right" json:"right"`
	Bottom int `mapstructure:"bottom" json:"bottom"`
}

// Normalize clamps negative insets to zero.
func (c *CropSettings) Normalize(log *logrus.Logger) {
	if c.Top < 0 {
		log.Warnf("invalid crop top value: %d, setting to 0", c.Top)
		c.Top = 0
	}
	if c.Left < 0 {
		log.Warnf("invalid crop left value: %d, setting to 0", c.Left)
		c.Left = 0
	}
	if c.Right < 0 {
		log.Warnf("invalid crop right value: %d, setting to 0", c.Right)
		c.Right = 0
	}
	if c.Bottom < 0 {
		log.Warnf("invalid crop bottom value: %d, setting to 0", c.Bottom)
		c.Bottom = 0
	}
}

// BackgroundSettings place the cropped image onto a background canvas.
// Size is applied verbatim to the cropped image; aspect ratio is not preserved.
type BackgroundSettings struct {
	File     string   `mapstructure:"file" json:"file"`
	Position Position `mapstructure:"position" json:"position"`
	Size     Size     `mapstructure:"size" json:"size"`
}

// Normalize clamps the paste position and defaults non-positive sizes.
// Returns false when the block is unusable and must be disabled.
func (b *BackgroundSettings) Normalize(log *logrus.Logger) bool {
	if b.File == "" {
		log.Error("missing required background setting: file")
		return false
	}
	if b.Position.X < 0 {
		log.Warnf("invalid background position x: %d, setting to 0", b.Position.X)
		b.Position.X = 0
	}
	if b.Position.Y < 0 {
		log.Warnf("invalid background position y: %d, setting to 0", b.Position.Y)
		b.Position.Y = 0
	}
	if b.Size.Width <= 0 {
		log.Warnf("invalid background width: %d, setting to 100", b.Size.Width)
		b.Size.Width = 100
	}
	if b.Size.Height <= 0 {
		log.Warnf("invalid background height: %d, setting to 100", b.Size.Height)
		b.Size.Height = 100
	}
	return true
}

// OverlaySettings paste a decorative image on top of everything else.
type OverlaySettings struct {
	File     string   `mapstructure:"file" json:"file"`
	Position Position `mapstructure:"position" json:"position"`
}

func (o *OverlaySettings) Normalize(log *logrus.Logger) bool {
	if o.File == "" {
		log.Error("missing required overlay setting: file")
		return false
	}
	return true
}

// FontSettings map locale codes to font files. The "default" entry is the
// fallback for locales without their own font.
type FontSettings struct {
	Files map[string]string `mapstructure:"files" json:"files"`
}

// TextSettings describe the text bounding box, alignment and color.
type TextSettings struct {
	Font   FontSettings `mapstructure:"font" json:"font"`
	Size   int          `mapstructure:"size" json:"size"`
	Align  string       `mapstructure:"align" json:"align"`
	VAlign string       `mapstructure:"valign" json:"valign"`
	X      int          `mapstructure:"x" json:"x"`
	Y      int          `mapstructure:"y" json:"y"`
	Width  int          `mapstructure:"width" json:"width"`
	Height int          `mapstructure:"height" json:"height"`
	Color  RGBColor     `mapstructure:"color" json:"color"`
}

// Normalize validates text settings, returning false when the block is
// unusable (no default font) and text rendering must be disabled.
func (t *TextSettings) Normalize(log *logrus.Logger) bool {
	if len(t.Font.Files) == 0 || t.Font.Files["default"] == "" {
		log.Warn("invalid font files value, a 'default' font entry is required")
		return false
	}
	if t.Size <= 0 {
		log.Warnf("invalid font size value: %d, setting to 24", t.Size)
		t.Size = 24
	}
	switch t.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		log.Warnf("invalid align value: %q, setting to %q", t.Align, AlignLeft)
		t.Align = AlignLeft
	}
	switch t.VAlign {
	case VAlignTop, VAlignMiddle, VAlignBottom:
	default:
		log.Warnf("invalid valign value: %q, setting to %q", t.VAlign, VAlignTop)
		t.VAlign = VAlignTop
	}
	if t.X < 0 {
		log.Warnf("invalid text x value: %d, setting to 0", t.X)
		t.X = 0
	}
	if t.Y < 0 {
		log.Warnf("invalid text y value: %d, setting to 0", t.Y)
		t.Y = 0
	}
	if t.Width <= 0 {
		log.Warnf("invalid text width value: %d, setting to 100", t.Width)
		t.Width = 100
	}
	if t.Height <= 0 {
		log.Warnf("invalid text height value: %d, setting to 100", t.Height)
		t.Height = 100
	}
	return true
}

// ExportSettings control the output encoding and artifact layout.
type ExportSettings struct {
	Format      string `mapstructure:"format" json:"format"`
	Quality     int    `mapstructure:"quality" json:"quality"`
	Lossless    bool   `mapstructure:"lossless" json:"lossless"`
	KeepCropped bool   `mapstructure:"keep_cropped" json:"keep_cropped"`
	LocaleDirs  bool   `mapstructure:"locale_dirs" json:"locale_dirs"`
}

// DefaultExportSettings are used when the export block is absent or malformed.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Format:     FormatPNG,
		Quality:    90,
		LocaleDirs: true,
	}
}

func (e *ExportSettings) Normalize(log *logrus.Logger) {
	switch e.Format {
	case FormatPNG, FormatWebP:
	default:
		log.Warnf("invalid export format: %q, setting to %q", e.Format, FormatPNG)
		e.Format = FormatPNG
	}
	if e.Quality < 1 || e.Quality > 100 {
		log.Warnf("invalid export quality: %d, setting to 90", e.Quality)
		e.Quality = 90
	}
}

// CompositionConfig is the validated screenshot-cropper.json content.
// Optional sub-blocks are nil when absent or malformed; a nil config as a
// whole means the crop block was missing and composition is skipped.
type CompositionConfig struct {
	Crop       *CropSettings
	Background *BackgroundSettings
	Overlay    *OverlaySettings
	Text       *TextSettings
	Export     ExportSettings
}
