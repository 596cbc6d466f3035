// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"unicode"

	"redact-check/internal/pdfaccess"
)

// Fallback glyph-run dimensions in device units, used when the text codec
// reports no width or font size.
const (
	fallbackGlyphWidth = 5.0
	fallbackRunHeight  = 10.0
)

// TextBox is an approximate device-space bounding box for a glyph run. It is
// not required to be tight; it exists only for overlap testing.
type TextBox struct {
	X float64
	Y float64
	W float64
	H float64
}

// TextBoxes projects text items to device-space boxes and counts
// non-whitespace glyphs.
func TextBoxes(items []pdfaccess.TextItem, vp Viewport) ([]TextBox, int) {
	boxes := make([]TextBox, 0, len(items))
	chars := 0

	for _, item := range items {
		glyphs := 0
		for _, r := range item.S {
			if !unicode.IsSpace(r) {
				glyphs++
			}
		}
		chars += glyphs

		w := item.W * ViewportScale
		if w <= 0 {
			w = fallbackGlyphWidth * float64(len([]rune(item.S)))
		}
		h := item.FontSize * ViewportScale
		if h <= 0 {
			h = fallbackRunHeight
		}

		vx := item.X * ViewportScale
		vy := vp.PageH - item.Y*ViewportScale
		boxes = append(boxes, TextBox{X: vx, Y: vy - h, W: w, H: h})
	}
	return boxes, chars
}

// AnyOverlap reports whether any rectangle intersects any text box with a
// strictly positive intersection area.
func AnyOverlap(rects []Rect, boxes []TextBox) bool {
	for _, r := range rects {
		for _, b := range boxes {
			iw := min64(r.X+r.W, b.X+b.W) - max64(r.X, b.X)
			ih := min64(r.Y+r.H, b.Y+b.H) - max64(r.Y, b.Y)
			if iw > 0 && ih > 0 {
				return true
			}
		}
	}
	return false
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
