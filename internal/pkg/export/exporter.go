// Export step: encodes composite artifacts and writes them into the output
// tree, one file per (image, locale) pair plus the optional cropped twin.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/sirupsen/logrus"

	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/locale"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/naming"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/storage"
)

// CroppedDir holds the keep_cropped artifacts inside the output tree.
const CroppedDir = "cropped"

type Exporter struct {
	store storage.FileStorage
	cfg   entity.ExportSettings
	log   *logrus.Logger
}

func NewExporter(store storage.FileStorage, cfg entity.ExportSettings, log *logrus.Logger) *Exporter {
	return &Exporter{store: store, cfg: cfg, log: log}
}

// Ext is the output file extension for the configured format.
func (e *Exporter) Ext() string {
	if e.cfg.Format == entity.FormatWebP {
		return ".webp"
	}
	return ".png"
}

// OutputPath is the destination, relative to the output root, for a source
// image name and locale. Real locales go to per-locale subfolders (or to a
// <name>_<locale> suffix scheme when locale_dirs is off); the default
// pseudo-locale exports flat.
func (e *Exporter) OutputPath(name, loc string) string {
	stem := naming.Stem(name)
	if loc == locale.Default {
		return stem + e.Ext()
	}
	if e.cfg.LocaleDirs {
		return filepath.Join(loc, stem+e.Ext())
	}
	return stem + "_" + loc + e.Ext()
}

// CroppedPath mirrors OutputPath under the cropped/ subtree.
func (e *Exporter) CroppedPath(name, loc string) string {
	return filepath.Join(CroppedDir, e.OutputPath(name, loc))
}

// Exists reports whether the destination file is already present, the
// skip-existing probe.
func (e *Exporter) Exists(rel string) bool {
	return e.store.Exists(rel)
}

// FullPath resolves a relative destination against the output root.
func (e *Exporter) FullPath(rel string) string {
	return e.store.FullPath(rel)
}

// Export encodes and writes the artifact's canvas, plus the cropped
// snapshot when present. Returns the absolute paths written.
func (e *Exporter) Export(artifact *entity.CompositeArtifact, name, loc string) ([]string, error) {
	rel := e.OutputPath(name, loc)
	if err := e.save(rel, artifact.Canvas); err != nil {
		return nil, err
	}
	paths := []string{e.store.FullPath(rel)}

	if artifact.Cropped != nil {
		croppedRel := e.CroppedPath(name, loc)
		if err := e.save(croppedRel, artifact.Cropped); err != nil {
			return paths, err
		}
		paths = append(paths, e.store.FullPath(croppedRel))
	}
	return paths, nil
}

func (e *Exporter) save(rel string, img image.Image) error {
	var buf bytes.Buffer
	if err := e.encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	if err := e.store.Save(rel, &buf); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	e.log.Infof("saved %s", e.store.FullPath(rel))
	return nil
}

func (e *Exporter) encode(w io.Writer, img image.Image) error {
	switch e.cfg.Format {
	case entity.FormatWebP:
		var (
			opts *encoder.Options
			err  error
		)
		if e.cfg.Lossless {
			opts, err = encoder.NewLosslessEncoderOptions(encoder.PresetDefault, 6)
		} else {
			opts, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(e.cfg.Quality))
		}
		if err != nil {
			return err
		}
		return webp.Encode(w, img, opts)
	default:
		return png.Encode(w, img)
	}
}
