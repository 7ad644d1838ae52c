// Boundary to the external document automation (Photoshop/InDesign host
// application). The core never assumes it is available and degrades by
// skipping documents when it is not.
package docrender

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnavailable is returned when no document automation host is reachable.
var ErrUnavailable = errors.New("document renderer unavailable")

// Request describes one document render for one locale: the translated
// texts keyed exactly as in the locale files and the canonical font family
// the host should substitute.
type Request struct {
	ID           uuid.UUID
	DocumentPath string
	Locale       string
	Texts        map[string]string
	FontFamily   string
	OutputPath   string
}

// NewRequest assigns a fresh request id used for temp artifact naming and
// log correlation on the host side.
func NewRequest(documentPath, locale string, texts map[string]string, fontFamily, outputPath string) Request {
	return Request{
		ID:           uuid.New(),
		DocumentPath: documentPath,
		Locale:       locale,
		Texts:        texts,
		FontFamily:   fontFamily,
		OutputPath:   outputPath,
	}
}

// Renderer is implemented by document automation adapters. Render produces
// a rasterized export of the document at req.OutputPath.
type Renderer interface {
	Available() bool
	Render(ctx context.Context, req Request) error
}

// Unavailable is the default adapter on systems without a document
// automation host.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Render(context.Context, Request) error { return ErrUnavailable }
