// Loading and soft validation of the screenshot-cropper.json configuration.
package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/appshot-tools/screenshot-cropper/internal/entity"
)

// FileName is the configuration file expected at the root of the working directory.
const FileName = "screenshot-cropper.json"

// Load reads the composition configuration from path. It never fails hard:
// a missing file or a missing/invalid crop block yields nil, which disables
// cropping, background, overlay and text composition for the whole run.
// Malformed optional sub-blocks are disabled individually with a warning.
func Load(path string, log *logrus.Logger) *entity.CompositionConfig {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		log.Warnf("configuration %q not loaded: %v; cropping, background and text overlay will be skipped", path, err)
		return nil
	}

	if !v.IsSet("crop") {
		log.Warnf("no crop settings found in %q; composition will be skipped", path)
		return nil
	}

	var crop entity.CropSettings
	if err := v.UnmarshalKey("crop", &crop); err != nil {
		log.Warnf("invalid crop settings in %q: %v; composition will be skipped", path, err)
		return nil
	}
	crop.Normalize(log)

	cfg := &entity.CompositionConfig{
		Crop:   &crop,
		Export: entity.DefaultExportSettings(),
	}

	if v.IsSet("background") {
		var bg entity.BackgroundSettings
		if err := v.UnmarshalKey("background", &bg); err != nil {
			log.Warnf("invalid background settings: %v; background placement disabled", err)
		} else if bg.Normalize(log) {
			cfg.Background = &bg
		}
	}

	if v.IsSet("overlay") {
		var ov entity.OverlaySettings
		if err := v.UnmarshalKey("overlay", &ov); err != nil {
			log.Warnf("invalid overlay settings: %v; overlay disabled", err)
		} else if ov.Normalize(log) {
			cfg.Overlay = &ov
		}
	}

	if v.IsSet("text") {
		var txt entity.TextSettings
		if err := v.UnmarshalKey("text", &txt); err != nil {
			log.Warnf("invalid text settings: %v; text overlay disabled", err)
		} else if txt.Normalize(log) {
			cfg.Text = &txt
		}
	}

	if v.IsSet("export") {
		exp := entity.DefaultExportSettings()
		if err := v.UnmarshalKey("export", &exp); err != nil {
			log.Warnf("invalid export settings: %v; using defaults", err)
		} else {
			exp.Normalize(log)
			cfg.Export = exp
		}
	}

	return cfg
}
