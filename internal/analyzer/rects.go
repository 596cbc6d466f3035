// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"math"
	"strconv"
	"strings"

	"redact-check/internal/pdfaccess"
)

// Fixed forensic parameters. These are part of the audit-schema contract:
// changing any of them is a schema-level change.
const (
	// ViewportScale maps PDF user space to device space.
	ViewportScale = 1.5

	// DarknessThreshold is the inclusive per-channel maximum for a fill
	// color to count as near-black.
	DarknessThreshold = 0.15

	// MinRectSide rejects slivers before projection.
	MinRectSide = 5.0

	// MinRectAreaFloor and MinRectAreaRatio reject specks: a rectangle must
	// cover max(MinRectAreaFloor, MinRectAreaRatio*pageArea) device units².
	MinRectAreaFloor = 2000.0
	MinRectAreaRatio = 0.0005

	// MaxRectAreaRatio rejects page backgrounds.
	MaxRectAreaRatio = 0.6

	// cornerCoordLimit bounds the corner-pair reinterpretation of a
	// coordinate quadruple.
	cornerCoordLimit = 10000.0
)

// Viewport is the device-space projection of a page.
type Viewport struct {
	PageW float64
	PageH float64
}

// NewViewport projects user-space page dimensions to device space.
func NewViewport(userW, userH float64) Viewport {
	return Viewport{PageW: userW * ViewportScale, PageH: userH * ViewportScale}
}

// Area returns the device-space page area.
func (v Viewport) Area() float64 {
	return v.PageW * v.PageH
}

// Rect is a reconstructed filled rectangle in device space, top-left origin.
type Rect struct {
	X    float64
	Y    float64
	W    float64
	H    float64
	Area float64
}

// AspectElongated reports whether either orientation reaches the given
// aspect ratio.
func (r Rect) AspectElongated(ratio float64) bool {
	if r.W <= 0 || r.H <= 0 {
		return false
	}
	return r.W/r.H >= ratio || r.H/r.W >= ratio
}

// ReconstructRects interprets an operator list into the near-black filled
// rectangles drawn on the page. It matches on argument shapes rather than
// operator names, keeping minimal state: the current fill color and the
// current pure translation. Unrecognized operators contribute nothing and
// are never an error; over-detection is tolerated because the scorer and
// area filters compensate.
func ReconstructRects(ops []pdfaccess.Op, vp Viewport) []Rect {
	var (
		fillRGB  *[3]float64
		fillGray *float64
		tx, ty   float64
	)

	pageArea := vp.Area()
	minArea := math.Max(MinRectAreaRatio*pageArea, MinRectAreaFloor)

	var rects []Rect
	seen := map[[4]int]bool{}

	for _, op := range ops {
		if len(op.Args) == 1 {
			switch a := op.Args[0].(type) {
			case []float64:
				switch len(a) {
				case 6:
					if isIdentity(a) {
						continue
					}
					if a[0] == 1 && a[1] == 0 && a[2] == 0 && a[3] == 1 {
						tx, ty = a[4], a[5]
					}
					continue
				case 3:
					fillRGB = &[3]float64{a[0], a[1], a[2]}
					fillGray = nil
					continue
				case 1:
					g := a[0]
					fillGray = &g
					fillRGB = nil
					continue
				}
			case string:
				if rgb, ok := parseHexColor(a); ok {
					fillRGB = &rgb
					fillGray = nil
				}
				continue
			}
		}

		coords := coordsCandidate(op.Args)
		if coords == nil {
			continue
		}

		dark := (fillRGB != nil && fillRGB[0] <= DarknessThreshold &&
			fillRGB[1] <= DarknessThreshold && fillRGB[2] <= DarknessThreshold) ||
			(fillGray != nil && *fillGray <= DarknessThreshold)

		for i := 0; i+4 <= len(coords); i += 4 {
			n0, n1, n2, n3 := coords[i], coords[i+1], coords[i+2], coords[i+3]

			var x, y, w, h float64
			if n2 > n0 && n3 > n1 && n2 < cornerCoordLimit && n3 < cornerCoordLimit {
				// Corner pair (x1,y1,x2,y2).
				x, y, w, h = n0, n1, n2-n0, n3-n1
			} else {
				x, y, w, h = n0, n1, n2, n3
			}

			x += tx
			y += ty
			w = math.Abs(w)
			h = math.Abs(h)
			if w < MinRectSide || h < MinRectSide {
				continue
			}
			if !dark {
				continue
			}

			r := projectRect(x, y, w, h, vp)
			if r.Area/pageArea >= MaxRectAreaRatio {
				continue
			}
			if r.Area < minArea {
				continue
			}

			key := [4]int{
				int(math.Round(r.X)), int(math.Round(r.Y)),
				int(math.Round(r.W)), int(math.Round(r.H)),
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			rects = append(rects, r)
		}
	}
	return rects
}

// projectRect maps a user-space rectangle to device space with a top-left
// origin.
func projectRect(x, y, w, h float64, vp Viewport) Rect {
	dw := w * ViewportScale
	dh := h * ViewportScale
	dx := x * ViewportScale
	dy := vp.PageH - (y+h)*ViewportScale
	return Rect{X: dx, Y: dy, W: dw, H: dh, Area: dw * dh}
}

// coordsCandidate extracts the path-coordinate array from an operator's
// argument shapes: Args[1] when it is an array of at least four numbers,
// else Args[2] under the same condition.
func coordsCandidate(args []any) []float64 {
	for _, idx := range []int{1, 2} {
		if idx >= len(args) {
			return nil
		}
		if nums, ok := args[idx].([]float64); ok && len(nums) >= 4 {
			return nums
		}
	}
	return nil
}

func isIdentity(a []float64) bool {
	return a[0] == 1 && a[1] == 0 && a[2] == 0 && a[3] == 1 && a[4] == 0 && a[5] == 0
}

// parseHexColor parses a #RRGGBB literal into normalized RGB channels.
func parseHexColor(s string) ([3]float64, bool) {
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return [3]float64{}, false
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return [3]float64{}, false
		}
		rgb[i] = float64(v) / 255.0
	}
	return rgb, true
}
