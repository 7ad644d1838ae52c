package entity

import "image"

// CompositeArtifact is the result of composing one (image, locale) pair.
// Cropped holds the pre-text, pre-overlay canvas and is only set when
// keep_cropped is enabled.
type CompositeArtifact struct {
	Canvas  image.Image
	Cropped image.Image
}
