package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenshotNumber(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int
		found    bool
	}{
		{name: "purely numeric", filename: "7.png", want: 7, found: true},
		{name: "zero padded numeric", filename: "07.png", want: 7, found: true},
		{name: "prefixed with padding", filename: "screenshot_07.psd", want: 7, found: true},
		{name: "prefixed without padding", filename: "screenshot_7.jpg", want: 7, found: true},
		{name: "digits mid name", filename: "img_123_final.png", want: 123, found: true},
		{name: "trailing digits", filename: "hero2.png", want: 2, found: true},
		{name: "no digits", filename: "hero.png", found: false},
		{name: "with directory", filename: "input/screenshots/03.png", want: 3, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScreenshotNumber(tt.filename)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNumericStem(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int
		found    bool
	}{
		{name: "numeric stem", filename: "12.png", want: 12, found: true},
		{name: "prefixed stem is not numeric", filename: "screenshot_12.png", found: false},
		{name: "non numeric", filename: "cover.jpeg", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NumericStem(tt.filename)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
