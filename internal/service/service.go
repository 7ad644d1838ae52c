package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/appshot-tools/screenshot-cropper/internal/docrender"
	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/compositor"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/export"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/fontres"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/locale"
)

// Filters narrow the batch before any decoding or composition happens.
type Filters struct {
	// Screenshot restricts processing to files carrying this number; -1
	// disables the filter.
	Screenshot int
	// Language restricts the run to one locale code (applied when loading
	// the locale store; kept here for logging).
	Language string
	// SkipExisting omits pairs whose output file is already present.
	SkipExisting bool
	// Workers sizes the optional worker pool; values <= 1 run the batch
	// sequentially.
	Workers int
}

// BatchService drives the image x locale cross-product to exported files.
type BatchService interface {
	Run(ctx context.Context) ([]string, error)
}

type batchService struct {
	cfg      *entity.CompositionConfig
	locales  *locale.Store
	fonts    *fontres.Resolver
	comp     *compositor.Compositor
	exporter *export.Exporter
	renderer docrender.Renderer
	inputDir string
	filters  Filters
	log      *logrus.Logger
}

// NewBatchService wires the orchestrator. cfg, fonts and comp may be nil
// when the composition config is absent; document processing still runs.
func NewBatchService(
	cfg *entity.CompositionConfig,
	locales *locale.Store,
	fonts *fontres.Resolver,
	comp *compositor.Compositor,
	exporter *export.Exporter,
	renderer docrender.Renderer,
	inputDir string,
	filters Filters,
	log *logrus.Logger,
) BatchService {
	return &batchService{
		cfg:      cfg,
		locales:  locales,
		fonts:    fonts,
		comp:     comp,
		exporter: exporter,
		renderer: renderer,
		inputDir: inputDir,
		filters:  filters,
		log:      log,
	}
}
