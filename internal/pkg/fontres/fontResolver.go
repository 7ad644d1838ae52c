// Font resolution: locale to font file selection, face construction and
// name-table introspection for the document automation collaborator.
package fontres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrNoFont reports that neither a locale-specific nor a default font is
// configured. Text rendering for that locale is skipped, not failed.
var ErrNoFont = errors.New("no font configured for locale")

// Resolver selects and parses font files per locale. The file mapping is
// read-only after construction; parsed fonts are cached per file.
type Resolver struct {
	dir   string
	files map[string]string
	log   *logrus.Logger

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

// NewResolver builds a resolver over the font directory and the
// locale-to-file mapping from the text settings.
func NewResolver(dir string, files map[string]string, log *logrus.Logger) *Resolver {
	return &Resolver{
		dir:   dir,
		files: files,
		log:   log,
		fonts: make(map[string]*opentype.Font),
	}
}

// FontFile returns the font file for a locale: the exact locale entry when
// present, the default entry otherwise.
func (r *Resolver) FontFile(locale string) (string, error) {
	if file, ok := r.files[locale]; ok && file != "" {
		r.log.Debugf("using locale-specific font for %s: %s", locale, file)
		return file, nil
	}
	if file, ok := r.files["default"]; ok && file != "" {
		r.log.Debugf("no specific font for locale %s, using default: %s", locale, file)
		return file, nil
	}
	r.log.Warnf("no font available for locale %s, text rendering will be skipped", locale)
	return "", ErrNoFont
}

// Face returns a rendering face for the locale's font at the given size.
func (r *Resolver) Face(locale string, size int) (font.Face, error) {
	file, err := r.FontFile(locale)
	if err != nil {
		return nil, err
	}
	fnt, err := r.font(file)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face for %s: %w", file, err)
	}
	return face, nil
}

// FamilyName derives the canonical family name of the locale's font from
// its name table. The derivation is pure: no state is mutated beyond the
// parse cache.
func (r *Resolver) FamilyName(locale string) (string, error) {
	return r.nameEntry(locale, sfnt.NameIDFamily)
}

// StyleName derives the subfamily (Regular, Bold, ...) of the locale's font.
func (r *Resolver) StyleName(locale string) (string, error) {
	return r.nameEntry(locale, sfnt.NameIDSubfamily)
}

func (r *Resolver) nameEntry(locale string, id sfnt.NameID) (string, error) {
	file, err := r.FontFile(locale)
	if err != nil {
		return "", err
	}
	fnt, err := r.font(file)
	if err != nil {
		return "", err
	}
	name, err := fnt.Name(nil, id)
	if err != nil {
		return "", fmt.Errorf("read name table of %s: %w", file, err)
	}
	return name, nil
}

func (r *Resolver) font(file string) (*opentype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fnt, ok := r.fonts[file]; ok {
		return fnt, nil
	}
	path := filepath.Join(r.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file %s: %w", path, err)
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font file %s: %w", path, err)
	}
	r.fonts[file] = fnt
	return fnt, nil
}
