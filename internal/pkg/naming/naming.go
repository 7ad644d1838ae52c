// Filename helpers shared by the batch filters and the text key binding.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Stem returns the base filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NumericStem reports the stem parsed as a number when the stem is purely
// numeric, e.g. "07.png" -> 7.
func NumericStem(filename string) (int, bool) {
	n, err := strconv.Atoi(Stem(filename))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ScreenshotNumber extracts the screenshot number from a filename. Purely
// numeric stems parse directly; otherwise the first run of digits is used,
// e.g. "screenshot_07.psd" -> 7. The second result is false when the
// filename carries no digits at all.
func ScreenshotNumber(filename string) (int, bool) {
	stem := Stem(filename)
	if n, err := strconv.Atoi(stem); err == nil && n >= 0 {
		return n, true
	}

	start := -1
	for i := 0; i < len(stem); i++ {
		if stem[i] >= '0' && stem[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(stem[start:i])
			if err == nil {
				return n, true
			}
			start = -1
		}
	}
	if start >= 0 {
		if n, err := strconv.Atoi(stem[start:]); err == nil {
			return n, true
		}
	}
	return 0, false
}
