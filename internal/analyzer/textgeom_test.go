// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redact-check/internal/pdfaccess"
)

func TestTextBoxes_CharCountStripsWhitespace(t *testing.T) {
	items := []pdfaccess.TextItem{
		{S: "SSN 123-45-6789", X: 50, Y: 700, W: 90, FontSize: 12},
		{S: "  \t\n", X: 0, Y: 0},
	}
	boxes, chars := TextBoxes(items, letterViewport)

	assert.Equal(t, 14, chars)
	require.Len(t, boxes, 2)
}

func TestTextBoxes_Projection(t *testing.T) {
	items := []pdfaccess.TextItem{{S: "Hello", X: 50, Y: 700, W: 90, FontSize: 12}}
	boxes, _ := TextBoxes(items, letterViewport)

	require.Len(t, boxes, 1)
	b := boxes[0]
	assert.InDelta(t, 75.0, b.X, 0.001)
	assert.InDelta(t, 135.0, b.W, 0.001)
	assert.InDelta(t, 18.0, b.H, 0.001)
	// Baseline at device y 138; the box extends upward by its height.
	assert.InDelta(t, 120.0, b.Y, 0.001)
}

func TestTextBoxes_FallbackDimensions(t *testing.T) {
	items := []pdfaccess.TextItem{{S: "abcd", X: 10, Y: 10}}
	boxes, _ := TextBoxes(items, letterViewport)

	require.Len(t, boxes, 1)
	assert.InDelta(t, 20.0, boxes[0].W, 0.001) // 5 per glyph
	assert.InDelta(t, 10.0, boxes[0].H, 0.001)
}

func TestAnyOverlap_StrictlyPositiveIntersection(t *testing.T) {
	rect := Rect{X: 100, Y: 100, W: 50, H: 50}

	cases := []struct {
		name string
		box  TextBox
		want bool
	}{
		{"clear overlap", TextBox{X: 120, Y: 120, W: 10, H: 10}, true},
		{"touching edges only", TextBox{X: 150, Y: 100, W: 20, H: 20}, false},
		{"touching corner only", TextBox{X: 150, Y: 150, W: 5, H: 5}, false},
		{"disjoint", TextBox{X: 300, Y: 300, W: 10, H: 10}, false},
		{"one unit inside", TextBox{X: 149, Y: 100, W: 20, H: 20}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AnyOverlap([]Rect{rect}, []TextBox{tc.box})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnyOverlap_Empty(t *testing.T) {
	assert.False(t, AnyOverlap(nil, nil))
	assert.False(t, AnyOverlap([]Rect{{X: 0, Y: 0, W: 10, H: 10}}, nil))
	assert.False(t, AnyOverlap(nil, []TextBox{{X: 0, Y: 0, W: 10, H: 10}}))
}
