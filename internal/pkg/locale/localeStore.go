// Locale store: one JSON file per locale mapping text keys to translated strings.
package locale

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Default is the pseudo-locale used when no locale files are loaded.
// A batch always produces at least one output per image under it.
const Default = "default"

// ErrTextNotFound reports a missing text key for a locale. Callers skip
// text rendering for that pair instead of aborting the batch.
var ErrTextNotFound = errors.New("locale text not found")

// Store holds per-locale text maps, read-only after construction.
type Store struct {
	locales map[string]map[string]string
	log     *logrus.Logger
}

// NewStore loads every <code>.json file in dir. The filename stem is the
// locale code. A non-empty language filter restricts loading to that single
// code. A missing or empty directory yields an empty store, not an error.
func NewStore(dir, language string, log *logrus.Logger) *Store {
	s := &Store{locales: make(map[string]map[string]string), log: log}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("locales directory not found: %s", dir)
		return s
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		code := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if language != "" && code != language {
			log.Debugf("skipping locale %q (language filter: %q)", code, language)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Errorf("failed to read locale file %s: %v", e.Name(), err)
			continue
		}
		texts := make(map[string]string)
		if err := json.Unmarshal(data, &texts); err != nil {
			log.Errorf("failed to parse locale file %s: %v", e.Name(), err)
			continue
		}
		s.locales[code] = texts
		log.Infof("loaded locale %s with %d texts", code, len(texts))
	}

	return s
}

// Locales returns the loaded locale codes in sorted order.
func (s *Store) Locales() []string {
	codes := make([]string, 0, len(s.locales))
	for code := range s.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsEmpty reports whether no locale files were loaded.
func (s *Store) IsEmpty() bool {
	return len(s.locales) == 0
}

// Resolve looks up the text for a locale and numeric key, trying the bare
// number first and the Text_<n> convention second.
func (s *Store) Resolve(locale string, key int) (string, error) {
	texts, ok := s.locales[locale]
	if !ok {
		s.log.Warnf("locale not found: %s", locale)
		return "", ErrTextNotFound
	}
	if text, ok := texts[strconv.Itoa(key)]; ok {
		return text, nil
	}
	if text, ok := texts[fmt.Sprintf("Text_%d", key)]; ok {
		return text, nil
	}
	s.log.Warnf("text key %d not found in locale %s", key, locale)
	return "", ErrTextNotFound
}

// TextsFor returns a copy of the full key-to-text map for a locale, the
// payload handed to the document automation collaborator.
func (s *Store) TextsFor(locale string) map[string]string {
	texts, ok := s.locales[locale]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(texts))
	for k, v := range texts {
		out[k] = v
	}
	return out
}
