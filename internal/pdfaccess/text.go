// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfaccess

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextItem is one positioned glyph run in PDF user space. X and Y are the
// baseline origin; W and FontSize may be zero when the reader cannot
// determine them.
type TextItem struct {
	S        string
	X        float64
	Y        float64
	W        float64
	FontSize float64
}

// TextReader extracts positioned text items per page. It parses the input
// independently of the pdfcpu context, so analysis never aliases state the
// cleaner might mutate.
type TextReader struct {
	reader *pdf.Reader
}

// NewTextReader opens data for text extraction. The underlying reader both
// returns errors and panics depending on what it dislikes about a file;
// either way the caller degrades to pages without text.
func NewTextReader(data []byte) (tr *TextReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			tr = nil
			err = fmt.Errorf("text codec rejected input: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &TextReader{reader: r}, nil
}

// TextItems returns the glyph runs of a 1-based page. The underlying reader
// panics on some malformed structures; those pages yield no items rather
// than aborting the document.
func (tr *TextReader) TextItems(pageNr int) (items []TextItem) {
	if tr == nil || tr.reader == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			items = nil
		}
	}()

	if pageNr < 1 || pageNr > tr.reader.NumPage() {
		return nil
	}
	p := tr.reader.Page(pageNr)
	if p.V.IsNull() {
		return nil
	}

	content := p.Content()
	items = make([]TextItem, 0, len(content.Text))
	for _, t := range content.Text {
		items = append(items, TextItem{
			S:        t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
		})
	}
	return items
}
