// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdftest builds minimal but structurally valid PDFs with correct
// xref offsets for use in tests.
package pdftest

import (
	"fmt"
	"strings"
)

// Page describes one synthetic page.
type Page struct {
	// Content is the page's content stream body, stored uncompressed.
	Content string

	// AnnotSubtypes creates one annotation per entry with that Subtype.
	AnnotSubtypes []string

	// MediaBox overrides the default 612x792 when non-zero.
	MediaBox [4]float64
}

// Build assembles a classic-xref PDF from the given pages. Object layout:
// 1 catalog, 2 page tree, 3 font, then per page a page object, a content
// stream object, and one object per annotation.
func Build(pages ...Page) []byte {
	type object struct {
		body string
	}

	objects := []object{
		{body: "<< /Type /Catalog /Pages 2 0 R >>"},
		{}, // page tree, filled below
		{body: "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"},
	}

	var kidRefs []string
	for _, p := range pages {
		mediaBox := p.MediaBox
		if mediaBox == [4]float64{} {
			mediaBox = [4]float64{0, 0, 612, 792}
		}

		contentNum := len(objects) + 2
		pageNum := len(objects) + 1
		var annotRefs []string
		for i := range p.AnnotSubtypes {
			annotRefs = append(annotRefs, fmt.Sprintf("%d 0 R", contentNum+1+i))
		}

		pageDict := fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [%g %g %g %g] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >>",
			mediaBox[0], mediaBox[1], mediaBox[2], mediaBox[3], contentNum)
		if len(annotRefs) > 0 {
			pageDict += " /Annots [" + strings.Join(annotRefs, " ") + "]"
		}
		pageDict += " >>"

		objects = append(objects, object{body: pageDict})
		objects = append(objects, object{body: fmt.Sprintf(
			"<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content)})
		for _, subtype := range p.AnnotSubtypes {
			objects = append(objects, object{body: fmt.Sprintf(
				"<< /Type /Annot /Subtype /%s /Rect [0 0 10 10] >>", subtype)})
		}
		kidRefs = append(kidRefs, fmt.Sprintf("%d 0 R", pageNum))
	}

	objects[1].body = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kidRefs, " "), len(pages))

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj.body)
	}

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	return []byte(b.String())
}

// TextShowOps returns content-stream operators that draw text at the given
// position with the shared /F1 font.
func TextShowOps(text string, x, y float64) string {
	escaped := strings.ReplaceAll(text, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "(", `\(`)
	escaped = strings.ReplaceAll(escaped, ")", `\)`)
	return fmt.Sprintf("BT\n/F1 12 Tf\n%g %g Td\n(%s) Tj\nET", x, y, escaped)
}
