// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfaccess

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redact-check/internal/pdftest"
)

func TestValidateHeader(t *testing.T) {
	assert.ErrorIs(t, ValidateHeader(nil), ErrEmptyInput)
	assert.ErrorIs(t, ValidateHeader([]byte{}), ErrEmptyInput)
	assert.ErrorIs(t, ValidateHeader([]byte("PK\x03\x04zipfile")), ErrMalformedPDF)
	assert.NoError(t, ValidateHeader([]byte("%PDF-1.7\n...")))
}

func TestOpen_ValidDocument(t *testing.T) {
	data := pdftest.Build(
		pdftest.Page{Content: "0 0 0 rg\n10 10 100 100 re\nf"},
		pdftest.Page{Content: "BT ET"},
	)

	doc, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, data, doc.Raw())
}

func TestOpen_ParseFailure(t *testing.T) {
	_, err := Open([]byte("%PDF-1.4\nthis is not a real pdf body"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestPageSize(t *testing.T) {
	data := pdftest.Build(pdftest.Page{
		Content:  "BT ET",
		MediaBox: [4]float64{0, 0, 600, 800},
	})

	doc, err := Open(data)
	require.NoError(t, err)

	w, h, err := doc.PageSize(1)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, w, 0.001)
	assert.InDelta(t, 800.0, h, 0.001)
}

func TestContentStreams_RoundTrip(t *testing.T) {
	content := "0 0 0 rg\n48 696 180 20 re\nf"
	data := pdftest.Build(pdftest.Page{Content: content})

	doc, err := Open(data)
	require.NoError(t, err)

	refs, err := doc.ContentStreamRefs(1)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	info, err := doc.StreamInfoForRef(refs[0])
	require.NoError(t, err)
	require.Nil(t, info.DecodeErr)
	assert.Equal(t, content, string(info.Decoded))
	assert.False(t, info.HasFilter)
}

func TestReplaceStream_PersistsThroughSerialize(t *testing.T) {
	data := pdftest.Build(pdftest.Page{Content: "0 0 0 rg\n48 696 180 20 re\nf"})

	doc, err := Open(data)
	require.NoError(t, err)

	refs, err := doc.ContentStreamRefs(1)
	require.NoError(t, err)
	info, err := doc.StreamInfoForRef(refs[0])
	require.NoError(t, err)

	require.NoError(t, doc.ReplaceStream(info, []byte("% overlay removed\n")))

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	reopened, err := Open(out)
	require.NoError(t, err)
	refs, err = reopened.ContentStreamRefs(1)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	info, err = reopened.StreamInfoForRef(refs[0])
	require.NoError(t, err)
	assert.Equal(t, "% overlay removed\n", string(info.Decoded))
}

func TestAnnotations(t *testing.T) {
	data := pdftest.Build(pdftest.Page{
		Content:       "BT ET",
		AnnotSubtypes: []string{"Redact", "Link"},
	})

	doc, err := Open(data)
	require.NoError(t, err)

	subtypes, err := doc.AnnotationSubtypes(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Redact", "Link"}, subtypes)

	had, err := doc.DeletePageAnnots(1)
	require.NoError(t, err)
	assert.True(t, had)

	subtypes, err = doc.AnnotationSubtypes(1)
	require.NoError(t, err)
	assert.Empty(t, subtypes)

	// A second delete reports nothing present.
	had, err = doc.DeletePageAnnots(1)
	require.NoError(t, err)
	assert.False(t, had)
}

func TestAnnotations_Nonepresent(t *testing.T) {
	data := pdftest.Build(pdftest.Page{Content: "BT ET"})

	doc, err := Open(data)
	require.NoError(t, err)

	subtypes, err := doc.AnnotationSubtypes(1)
	require.NoError(t, err)
	assert.Empty(t, subtypes)

	had, err := doc.DeletePageAnnots(1)
	require.NoError(t, err)
	assert.False(t, had)
}

func TestTextReader_Items(t *testing.T) {
	data := pdftest.Build(pdftest.Page{
		Content: pdftest.TextShowOps("Hello forensic world", 50, 700),
	})

	tr, err := NewTextReader(data)
	require.NoError(t, err)

	items := tr.TextItems(1)
	require.NotEmpty(t, items)

	var joined []byte
	for _, item := range items {
		joined = append(joined, item.S...)
	}
	assert.Contains(t, string(joined), "Hello")

	first := items[0]
	assert.InDelta(t, 50.0, first.X, 2.0)
	assert.InDelta(t, 700.0, first.Y, 2.0)
}

func TestTextReader_OutOfRangePage(t *testing.T) {
	data := pdftest.Build(pdftest.Page{Content: "BT ET"})

	tr, err := NewTextReader(data)
	require.NoError(t, err)

	assert.Empty(t, tr.TextItems(0))
	assert.Empty(t, tr.TextItems(99))
}
