// Text layout engine: word wrapping against glyph metrics and alignment of
// the resulting line block inside a bounding box.
package layout

import (
	"image"
	"strings"

	"golang.org/x/image/font"

	"github.com/appshot-tools/screenshot-cropper/internal/entity"
)

// Line is one rendered row of text with its measured pixel width.
type Line struct {
	Text  string
	Width int
}

// Result is the wrapped line sequence plus the block's total size. Row
// spacing is the face's metric height, identical for every line.
type Result struct {
	Lines      []Line
	LineHeight int
	Width      int
	Height     int
}

// Box is the text bounding box in canvas coordinates.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Layout splits text on hard \n breaks, greedily word-wraps each paragraph
// to boxWidth using the face's glyph metrics and returns the measured block.
// Hard breaks are always preserved as line boundaries. A single word wider
// than boxWidth keeps its own line unbroken. A boxWidth <= 0 degenerates to
// one word per line. Empty text yields zero lines.
func Layout(text string, face font.Face, boxWidth int) Result {
	if text == "" {
		return Result{}
	}

	res := Result{LineHeight: face.Metrics().Height.Ceil()}
	for _, para := range strings.Split(text, "\n") {
		for _, lineText := range wrapParagraph(para, face, boxWidth) {
			res.Lines = append(res.Lines, Line{Text: lineText, Width: measure(face, lineText)})
		}
	}
	for _, ln := range res.Lines {
		if ln.Width > res.Width {
			res.Width = ln.Width
		}
	}
	res.Height = res.LineHeight * len(res.Lines)
	return res
}

// Origins computes the top-left draw origin of every line, honoring
// horizontal alignment per line and vertical alignment of the whole block.
// Text taller than the box is not clipped; origins simply run past it.
func (r Result) Origins(box Box, align, valign string) []image.Point {
	y := box.Y
	switch valign {
	case entity.VAlignMiddle:
		y += (box.Height - r.Height) / 2
	case entity.VAlignBottom:
		y += box.Height - r.Height
	}

	origins := make([]image.Point, len(r.Lines))
	for i, ln := range r.Lines {
		x := box.X
		switch align {
		case entity.AlignCenter:
			x += (box.Width - ln.Width) / 2
		case entity.AlignRight:
			x += box.Width - ln.Width
		}
		origins[i] = image.Pt(x, y)
		y += r.LineHeight
	}
	return origins
}

func wrapParagraph(para string, face font.Face, boxWidth int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		// An empty paragraph still occupies a row so that hard breaks are
		// never merged.
		return []string{""}
	}
	if boxWidth <= 0 {
		return words
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		test := current + " " + word
		if measure(face, test) <= boxWidth {
			current = test
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
