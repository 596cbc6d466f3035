// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cleaner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redact-check/internal/analyzer"
	"redact-check/internal/audit"
	"redact-check/internal/pdfaccess"
	"redact-check/internal/pdftest"
)

const coveredText = "Employee record SSN 123-45-6789 internal use only"

func overlayDoc() []byte {
	content := pdftest.TextShowOps(coveredText, 50, 700) +
		"\n0 0 0 rg\n48 696 180 20 re\nf\n"
	return pdftest.Build(pdftest.Page{Content: content})
}

func TestClean_RemovesOverlayAndReanalyzesClean(t *testing.T) {
	data := overlayDoc()

	a := analyzer.New(nil)
	before, err := a.Analyze(data, "overlay.pdf")
	require.NoError(t, err)
	require.Equal(t, 1, before.Summary.PagesFlagged)

	result, err := New(nil).Clean(data, before)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.CleanedBytes, []byte("%PDF-")))
	assert.GreaterOrEqual(t, result.Actions.RemovedOverlayOpsEstimate, 1)
	assert.Equal(t, audit.CleanNote, result.Actions.Note)

	after, err := a.Analyze(result.CleanedBytes, "overlay.cleaned.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Pages[0].Signals.DarkRects)
	assert.Equal(t, audit.RiskNone, after.Pages[0].Risk)
	assert.Equal(t, 0, after.Summary.PagesFlagged)
}

func TestClean_RemovesRedactAnnotations(t *testing.T) {
	data := pdftest.Build(pdftest.Page{
		Content:       pdftest.TextShowOps("CLASSIFIED briefing, distribution restricted", 72, 700),
		AnnotSubtypes: []string{"Redact"},
	})

	a := analyzer.New(nil)
	before, err := a.Analyze(data, "annot.pdf")
	require.NoError(t, err)
	require.Equal(t, 1, before.Pages[0].Signals.RedactAnnots)

	result, err := New(nil).Clean(data, before)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Actions.RemovedAnnotsPages)
	assert.Equal(t, 1, result.Actions.RemovedRedactAnnotsEstimate)

	after, err := a.Analyze(result.CleanedBytes, "annot.cleaned.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Pages[0].Signals.RedactAnnots)
	assert.Equal(t, audit.RiskNone, after.Pages[0].Risk)
}

func TestClean_WithoutAuditStillCleans(t *testing.T) {
	data := overlayDoc()

	result, err := New(nil).Clean(data, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Actions.RemovedOverlayOpsEstimate, 1)
	assert.Equal(t, 0, result.Actions.RemovedRedactAnnotsEstimate)
}

func TestClean_GrayPathRect(t *testing.T) {
	content := pdftest.TextShowOps("Ledger totals for the quarter, see appendix", 70, 72) +
		"\nq\n0 g\n100 100 m\n300 100 l\n300 120 l\n100 120 l\nh\nf\nQ\n"
	data := pdftest.Build(pdftest.Page{Content: content})

	a := analyzer.New(nil)
	before, err := a.Analyze(data, "path.pdf")
	require.NoError(t, err)
	require.GreaterOrEqual(t, before.Pages[0].Signals.DarkRects, 1)

	result, err := New(nil).Clean(data, before)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Actions.RemovedOverlayOpsEstimate, 1)

	after, err := a.Analyze(result.CleanedBytes, "path.cleaned.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Pages[0].Signals.DarkRects)
}

func TestClean_UnrecognizedContentUntouched(t *testing.T) {
	// A light-gray fill opens with neither the "0 0 0 rg" nor the "0 g"
	// anchor; the page passes through with nothing removed.
	content := pdftest.TextShowOps("Annual report body text goes right here", 50, 700) +
		"\n0.9 0.9 0.9 rg\n10 10 500 700 re\nf\n"
	data := pdftest.Build(pdftest.Page{Content: content})

	result, err := New(nil).Clean(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Actions.RemovedOverlayOpsEstimate)
}

func TestClean_FlaggedCountNonIncreasing(t *testing.T) {
	textOnly := pdftest.TextShowOps("Plain page with more than twenty characters", 50, 700)
	overlay := pdftest.TextShowOps(coveredText, 50, 700) +
		"\n0 0 0 rg\n48 696 180 20 re\nf\n"
	data := pdftest.Build(
		pdftest.Page{Content: textOnly},
		pdftest.Page{Content: overlay},
		pdftest.Page{Content: textOnly, AnnotSubtypes: []string{"Redact"}},
		pdftest.Page{Content: textOnly},
	)

	a := analyzer.New(nil)
	before, err := a.Analyze(data, "multi.pdf")
	require.NoError(t, err)
	require.Equal(t, 2, before.Summary.PagesFlagged)

	result, err := New(nil).Clean(data, before)
	require.NoError(t, err)

	after, err := a.Analyze(result.CleanedBytes, "multi.cleaned.pdf")
	require.NoError(t, err)
	assert.LessOrEqual(t, after.Summary.PagesFlagged, before.Summary.PagesFlagged)
	assert.Equal(t, 0, after.Summary.PagesFlagged)
}

func TestClean_ErrorKinds(t *testing.T) {
	_, err := New(nil).Clean(nil, nil)
	assert.ErrorIs(t, err, pdfaccess.ErrEmptyInput)

	_, err = New(nil).Clean([]byte("plain text file"), nil)
	assert.ErrorIs(t, err, pdfaccess.ErrMalformedPDF)
}

func TestCleanContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).CleanContext(ctx, overlayDoc(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdfaccess.ErrCancelled))
}
