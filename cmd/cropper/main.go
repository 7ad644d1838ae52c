package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/appshot-tools/screenshot-cropper/config"
	"github.com/appshot-tools/screenshot-cropper/internal/docrender"
	"github.com/appshot-tools/screenshot-cropper/internal/entity"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/compositor"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/export"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/fontres"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/locale"
	"github.com/appshot-tools/screenshot-cropper/internal/pkg/storage"
	"github.com/appshot-tools/screenshot-cropper/internal/service"
)

var (
	directory    string
	screenshot   int
	language     string
	skipExisting bool
	workers      int
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:          "cropper",
	Short:        "Batch-produce localized screenshots from a JSON composition config",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&directory, "directory", "", "directory containing the input folder and screenshot-cropper.json")
	rootCmd.Flags().IntVar(&screenshot, "screenshot", -1, "process only the given screenshot number (e.g. 7 for '7.png')")
	rootCmd.Flags().StringVar(&language, "language", "", "process only the given locale code (e.g. 'en', 'de')")
	rootCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip pairs whose output file already exists")
	rootCmd.Flags().IntVar(&workers, "workers", 1, "number of concurrent workers for pair processing")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	_ = rootCmd.MarkFlagRequired("directory")
}

func run(cmd *cobra.Command, _ []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		return fmt.Errorf("directory %q does not exist", directory)
	}
	inputDir := filepath.Join(directory, "input", "screenshots")
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("input directory %q does not exist", inputDir)
	}

	log.Infof("starting screenshot cropper with directory: %s", directory)

	cfg := config.Load(filepath.Join(directory, config.FileName), log)
	store := locale.NewStore(filepath.Join(directory, "input", "locales"), language, log)

	var (
		fonts *fontres.Resolver
		comp  *compositor.Compositor
	)
	exportCfg := entity.DefaultExportSettings()
	if cfg != nil {
		exportCfg = cfg.Export
		comp = compositor.New(cfg, filepath.Join(directory, "input"), log)
		if cfg.Text != nil {
			fonts = fontres.NewResolver(filepath.Join(directory, "input", "fonts"), cfg.Text.Font.Files, log)
		}
	}

	exporter := export.NewExporter(storage.NewFileStorage(filepath.Join(directory, "output")), exportCfg, log)

	svc := service.NewBatchService(cfg, store, fonts, comp, exporter, docrender.Unavailable{}, inputDir, service.Filters{
		Screenshot:   screenshot,
		Language:     language,
		SkipExisting: skipExisting,
		Workers:      workers,
	}, log)

	paths, err := svc.Run(cmd.Context())
	if err != nil {
		return err
	}
	log.Infof("batch finished: %d files exported", len(paths))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
