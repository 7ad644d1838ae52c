package service

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appshot-tools/screenshot-cropper/internal/docrender"
	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/compositor"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/export"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/locale"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/storage"
)

type fakeRenderer struct {
	available bool
	requests  []docrender.Request
}

func (f *fakeRenderer) Available() bool { return f.available }

func (f *fakeRenderer) Render(_ context.Context, req docrender.Request) error {
	f.requests = append(f.requests, req)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(req.OutputPath, []byte("rendered"), 0644)
}

type fixture struct {
	inputDir  string
	outputDir string
	localeDir string
	renderer  *fakeRenderer
	log       *logrus.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		inputDir:  filepath.Join(base, "input", "screenshots"),
		outputDir: filepath.Join(base, "output"),
		localeDir: filepath.Join(base, "input", "locales"),
		renderer:  &fakeRenderer{available: true},
		log:       logrus.New(),
	}
	f.log.SetLevel(logrus.ErrorLevel)
	require.NoError(t, os.MkdirAll(f.inputDir, 0755))
	require.NoError(t, os.MkdirAll(f.localeDir, 0755))
	return f
}

func (f *fixture) addImage(t *testing.T, name string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 30, B: 200, A: 255})
	require.NoError(t, imaging.Save(img, filepath.Join(f.inputDir, name)))
}

func (f *fixture) addLocale(t *testing.T, code, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.localeDir, code+".json"), []byte(content), 0644))
}

func (f *fixture) addDocument(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.inputDir, name), []byte("psd"), 0644))
}

func (f *fixture) service(t *testing.T, cfg *entity.CompositionConfig, filters Filters) BatchService {
	t.Helper()
	exportCfg := entity.DefaultExportSettings()
	var comp *compositor.Compositor
	if cfg != nil {
		exportCfg = cfg.Export
		comp = compositor.New(cfg, filepath.Dir(f.inputDir), f.log)
	}
	exporter := export.NewExporter(storage.NewFileStorage(f.outputDir), exportCfg, f.log)
	store := locale.NewStore(f.localeDir, filters.Language, f.log)
	return NewBatchService(cfg, store, nil, comp, exporter, f.renderer, f.inputDir, filters, f.log)
}

func cropOnlyConfig() *entity.CompositionConfig {
	return &entity.CompositionConfig{
		Crop:   &entity.CropSettings{Top: 10},
		Export: entity.DefaultExportSettings(),
	}
}

func noFilters() Filters { return Filters{Screenshot: -1} }

func TestRunProducesImageTimesLocale(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)
	f.addImage(t, "2.png", 60, 60)
	f.addLocale(t, "en", `{"1":"One"}`)
	f.addLocale(t, "de", `{"1":"Eins"}`)

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	for _, want := range []string{
		filepath.Join(f.outputDir, "en", "1.png"),
		filepath.Join(f.outputDir, "en", "2.png"),
		filepath.Join(f.outputDir, "de", "1.png"),
		filepath.Join(f.outputDir, "de", "2.png"),
	} {
		_, err := os.Stat(want)
		assert.NoError(t, err, want)
	}
}

func TestRunWithoutLocalesUsesDefaultPseudoLocale(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(f.outputDir, "1.png"), paths[0])
}

func TestRunCropsDimensions(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)

	img, err := imaging.Open(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestScreenshotFilter(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)
	f.addImage(t, "screenshot_2.png", 60, 60)

	filters := noFilters()
	filters.Screenshot = 2
	svc := f.service(t, cropOnlyConfig(), filters)
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(f.outputDir, "screenshot_2.png"), paths[0])
}

func TestSkipExistingProducesNoWrites(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)
	f.addLocale(t, "en", `{"1":"One"}`)

	// Pre-create the output with sentinel content.
	out := filepath.Join(f.outputDir, "en", "1.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))
	require.NoError(t, os.WriteFile(out, []byte("sentinel"), 0644))

	filters := noFilters()
	filters.SkipExisting = true
	svc := f.service(t, cropOnlyConfig(), filters)
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "sentinel", string(data))
}

func TestDocumentRouting(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "hero.psd")
	f.addLocale(t, "en", `{"Text_1":"Hello"}`)
	f.addLocale(t, "de", `{"Text_1":"Hallo"}`)

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.renderer.requests, 2)
	assert.Len(t, paths, 2)
	locales := []string{f.renderer.requests[0].Locale, f.renderer.requests[1].Locale}
	assert.ElementsMatch(t, []string{"de", "en"}, locales)
	for _, req := range f.renderer.requests {
		assert.Contains(t, req.DocumentPath, "hero.psd")
		assert.NotEmpty(t, req.Texts)
		assert.NotEqual(t, req.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, ".png", filepath.Ext(req.OutputPath))
	}
}

func TestDocumentsProcessedWithoutCropConfig(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)
	f.addDocument(t, "hero.psd")

	// Absent composition config: rasters skipped, documents still routed.
	svc := f.service(t, nil, noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(f.outputDir, "hero.png"), paths[0])
	_, err = os.Stat(filepath.Join(f.outputDir, "1.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCollaboratorNotInvokedWhenAllLocalesSkipped(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "hero.psd")
	f.addLocale(t, "en", `{"1":"One"}`)
	f.addLocale(t, "de", `{"1":"Eins"}`)

	for _, loc := range []string{"en", "de"} {
		out := filepath.Join(f.outputDir, loc, "hero.png")
		require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))
		require.NoError(t, os.WriteFile(out, []byte("existing"), 0644))
	}

	filters := noFilters()
	filters.SkipExisting = true
	svc := f.service(t, cropOnlyConfig(), filters)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.renderer.requests)
}

func TestCollaboratorUnavailableSkipsDocumentsOnly(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 60)
	f.addDocument(t, "hero.psd")
	f.renderer.available = false

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(f.outputDir, "1.png"), paths[0])
	assert.Empty(t, f.renderer.requests)
}

func TestEmptyCropDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "1.png", 60, 5) // shorter than the 10px top inset
	f.addImage(t, "2.png", 60, 60)

	svc := f.service(t, cropOnlyConfig(), noFilters())
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(f.outputDir, "2.png"), paths[0])
}

func TestRunWithWorkerPool(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"1.png", "2.png", "3.png", "4.png"} {
		f.addImage(t, name, 60, 60)
	}
	f.addLocale(t, "en", `{}`)
	f.addLocale(t, "de", `{}`)

	filters := noFilters()
	filters.Workers = 4
	svc := f.service(t, cropOnlyConfig(), filters)
	paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, paths, 8)
}

func TestTextKeyBinding(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		ordinal int
		want    int
	}{
		{name: "numeric filename wins", file: "07.png", ordinal: 3, want: 7},
		{name: "non-numeric falls back to ordinal", file: "cover.png", ordinal: 3, want: 3},
		{name: "prefixed name is not numeric", file: "screenshot_9.png", ordinal: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textKey(tt.file, tt.ordinal))
		})
	}
}
