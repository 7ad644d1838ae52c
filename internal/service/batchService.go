package service

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/image/font"

	"github.com/appshot-tools/screenshot-cropper/internal/docrender"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/locale"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/naming"
)

var rasterExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var documentExtensions = map[string]bool{
	".psd":  true,
	".indd": true,
}

// pairTask is one (image, locale) unit of work. Pairs never share mutable
// state; failure of one pair never aborts another.
type pairTask struct {
	file string
	loc  string
	key  int
}

func (s *batchService) Run(ctx context.Context) ([]string, error) {
	rasters, documents, err := s.listSources()
	if err != nil {
		return nil, err
	}
	locales := s.activeLocales()
	s.log.Infof("processing %d images and %d documents for locales: %s",
		len(rasters), len(documents), strings.Join(locales, ", "))

	var exported []string
	exported = append(exported, s.processRasters(ctx, rasters, locales)...)
	exported = append(exported, s.processDocuments(ctx, documents, locales)...)
	return exported, nil
}

func (s *batchService) listSources() (rasters, documents []string, err error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case rasterExtensions[ext]:
			rasters = append(rasters, e.Name())
		case documentExtensions[ext]:
			documents = append(documents, e.Name())
		}
	}
	sort.Strings(rasters)
	sort.Strings(documents)
	return rasters, documents, nil
}

// activeLocales falls back to the default pseudo-locale so that every image
// produces exactly one output even without locale files.
func (s *batchService) activeLocales() []string {
	if s.locales.IsEmpty() {
		return []string{locale.Default}
	}
	return s.locales.Locales()
}

// textKey binds a source image to its text key: a purely numeric filename
// is the key itself, anything else uses the image's 1-based position in the
// sorted batch.
func textKey(file string, ordinal int) int {
	if n, ok := naming.NumericStem(file); ok {
		return n
	}
	return ordinal
}

func (s *batchService) matchesScreenshotFilter(file string) bool {
	if s.filters.Screenshot < 0 {
		return true
	}
	n, ok := naming.ScreenshotNumber(file)
	return ok && n == s.filters.Screenshot
}

func (s *batchService) processRasters(ctx context.Context, rasters, locales []string) []string {
	if s.comp == nil {
		if len(rasters) > 0 {
			s.log.Info("no valid crop settings loaded; skipping image composition")
		}
		return nil
	}

	var tasks []pairTask
	for i, file := range rasters {
		if !s.matchesScreenshotFilter(file) {
			s.log.Debugf("skipping %s (screenshot filter: %d)", file, s.filters.Screenshot)
			continue
		}
		key := textKey(file, i+1)
		for _, loc := range locales {
			rel := s.exporter.OutputPath(file, loc)
			if s.filters.SkipExisting && s.exporter.Exists(rel) {
				s.log.Infof("skipping %s for locale %s: output already exists", file, loc)
				continue
			}
			tasks = append(tasks, pairTask{file: file, loc: loc, key: key})
		}
	}
	return s.runPairs(ctx, tasks)
}

// runPairs executes pair tasks either sequentially or on an ants pool.
// Source images are decoded once per file and shared read-only.
func (s *batchService) runPairs(ctx context.Context, tasks []pairTask) []string {
	if len(tasks) == 0 {
		return nil
	}
	sources := s.decodeSources(tasks)

	var (
		mu       sync.Mutex
		exported []string
	)
	process := func(task pairTask) {
		src, ok := sources[task.file]
		if !ok {
			return
		}
		paths, err := s.processPair(task, src)
		if err != nil {
			s.log.Errorf("failed to process %s for locale %s: %v", task.file, task.loc, err)
			return
		}
		mu.Lock()
		exported = append(exported, paths...)
		mu.Unlock()
	}

	if s.filters.Workers > 1 {
		pool, err := ants.NewPool(s.filters.Workers)
		if err != nil {
			s.log.Errorf("worker pool not started: %v; running sequentially", err)
		} else {
			defer pool.Release()
			var wg sync.WaitGroup
			for _, task := range tasks {
				if ctx.Err() != nil {
					break
				}
				task := task
				wg.Add(1)
				if err := pool.Submit(func() {
					defer wg.Done()
					process(task)
				}); err != nil {
					wg.Done()
					s.log.Errorf("failed to submit %s/%s: %v", task.file, task.loc, err)
				}
			}
			wg.Wait()
			return exported
		}
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		process(task)
	}
	return exported
}

// decodeSources opens each distinct source file once. Unreadable files are
// fatal for their own pairs only.
func (s *batchService) decodeSources(tasks []pairTask) map[string]image.Image {
	sources := make(map[string]image.Image)
	for _, task := range tasks {
		if _, ok := sources[task.file]; ok {
			continue
		}
		img, err := imaging.Open(filepath.Join(s.inputDir, task.file))
		if err != nil {
			s.log.Errorf("failed to open %s: %v", task.file, err)
			continue
		}
		sources[task.file] = img
	}
	return sources
}

func (s *batchService) processPair(task pairTask, src image.Image) ([]string, error) {
	text := s.resolveText(task)

	var face font.Face
	if text != "" && s.fonts != nil && s.cfg.Text != nil {
		f, err := s.fonts.Face(task.loc, s.cfg.Text.Size)
		if err != nil {
			s.log.Warnf("font unavailable for locale %s: %v; skipping text for %s", task.loc, err, task.file)
			text = ""
		} else {
			face = f
		}
	}

	artifact, err := s.comp.Compose(src, text, face)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(artifact, task.file, task.loc)
}

func (s *batchService) resolveText(task pairTask) string {
	if s.cfg == nil || s.cfg.Text == nil || s.locales.IsEmpty() {
		return ""
	}
	text, err := s.locales.Resolve(task.loc, task.key)
	if err != nil {
		if !errors.Is(err, locale.ErrTextNotFound) {
			s.log.Errorf("text resolution failed for %s/%s: %v", task.file, task.loc, err)
		}
		return ""
	}
	return text
}

// processDocuments routes proprietary documents to the automation
// collaborator. When skip-existing leaves no locale for a document, the
// collaborator is not invoked at all.
func (s *batchService) processDocuments(ctx context.Context, documents, locales []string) []string {
	if len(documents) == 0 {
		return nil
	}

	var exported []string
	for _, doc := range documents {
		if ctx.Err() != nil {
			break
		}
		if !s.matchesScreenshotFilter(doc) {
			s.log.Debugf("skipping document %s (screenshot filter: %d)", doc, s.filters.Screenshot)
			continue
		}

		var needed []string
		for _, loc := range locales {
			rel := s.documentOutputPath(doc, loc)
			if s.filters.SkipExisting && s.exporter.Exists(rel) {
				s.log.Infof("skipping locale %s for document %s: output already exists", loc, doc)
				continue
			}
			needed = append(needed, loc)
		}
		if len(needed) == 0 {
			s.log.Infof("all locales skipped for document %s", doc)
			continue
		}
		if !s.renderer.Available() {
			s.log.Warnf("document automation unavailable; skipping %s", doc)
			continue
		}

		for _, loc := range needed {
			rel := s.documentOutputPath(doc, loc)
			req := docrender.NewRequest(
				filepath.Join(s.inputDir, doc),
				loc,
				s.locales.TextsFor(loc),
				s.fontFamilyFor(loc),
				s.exporter.FullPath(rel),
			)
			if err := s.renderer.Render(ctx, req); err != nil {
				s.log.Errorf("document render failed for %s/%s (request %s): %v", doc, loc, req.ID, err)
				continue
			}
			exported = append(exported, req.OutputPath)
		}
	}
	return exported
}

// documentOutputPath mirrors the exporter's path scheme but documents
// always rasterize to PNG regardless of the configured export format.
func (s *batchService) documentOutputPath(doc, loc string) string {
	rel := s.exporter.OutputPath(doc, loc)
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".png"
}

func (s *batchService) fontFamilyFor(loc string) string {
	if s.fonts == nil {
		return ""
	}
	family, err := s.fonts.FamilyName(loc)
	if err != nil {
		s.log.Warnf("font family not derived for locale %s: %v", loc, err)
		return ""
	}
	return family
}
