package export

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/storage"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newTestExporter(t *testing.T, cfg entity.ExportSettings) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExporter(storage.NewFileStorage(dir), cfg, newTestLogger()), dir
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name       string
		localeDirs bool
		loc        string
		want       string
	}{
		{name: "locale subfolder", localeDirs: true, loc: "de", want: filepath.Join("de", "01.png")},
		{name: "suffix scheme", localeDirs: false, loc: "de", want: "01_de.png"},
		{name: "default pseudo-locale is flat", localeDirs: true, loc: "default", want: "01.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := entity.DefaultExportSettings()
			cfg.LocaleDirs = tt.localeDirs
			e, _ := newTestExporter(t, cfg)
			assert.Equal(t, tt.want, e.OutputPath("01.png", tt.loc))
		})
	}
}

func TestExportWritesPNG(t *testing.T) {
	e, dir := newTestExporter(t, entity.DefaultExportSettings())

	artifact := &entity.CompositeArtifact{
		Canvas: imaging.New(10, 10, color.NRGBA{R: 255, A: 255}),
	}
	paths, err := e.Export(artifact, "02.jpg", "en")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "en", "02.png"), paths[0])

	img, err := imaging.Open(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestExportWritesCroppedTwin(t *testing.T) {
	cfg := entity.DefaultExportSettings()
	cfg.KeepCropped = true
	e, dir := newTestExporter(t, cfg)

	artifact := &entity.CompositeArtifact{
		Canvas:  imaging.New(10, 10, color.NRGBA{R: 255, A: 255}),
		Cropped: imaging.New(8, 8, color.NRGBA{B: 255, A: 255}),
	}
	paths, err := e.Export(artifact, "02.png", "de")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "cropped", "de", "02.png"), paths[1])

	_, err = os.Stat(paths[1])
	assert.NoError(t, err)
}

func TestExistsProbe(t *testing.T) {
	e, _ := newTestExporter(t, entity.DefaultExportSettings())

	rel := e.OutputPath("03.png", "en")
	assert.False(t, e.Exists(rel))

	artifact := &entity.CompositeArtifact{Canvas: imaging.New(4, 4, color.NRGBA{A: 255})}
	_, err := e.Export(artifact, "03.png", "en")
	require.NoError(t, err)

	assert.True(t, e.Exists(rel))
}

func TestExtFollowsFormat(t *testing.T) {
	cfg := entity.DefaultExportSettings()
	e, _ := newTestExporter(t, cfg)
	assert.Equal(t, ".png", e.Ext())

	cfg.Format = entity.FormatWebP
	e, _ = newTestExporter(t, cfg)
	assert.Equal(t, ".webp", e.Ext())
}
