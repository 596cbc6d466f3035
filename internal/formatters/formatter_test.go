// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redact-check/internal/audit"
)

func sampleLog() *audit.Log {
	log := audit.NewLog("sample.pdf", []byte("%PDF-sample"), 2)
	log.AddPage(audit.PageAudit{
		Page:       1,
		Risk:       audit.RiskFlagged,
		Confidence: 55,
		Signals:    audit.Signals{HasText: true, TextChars: 40, DarkRects: 1, DarkRectAreaRatio: 0.0074, OverlapsTextLikely: true},
		Findings: []audit.Finding{
			{Type: audit.FindingOverlayRect, Count: 1, BBoxSamples: []audit.BBox{{X: 72, Y: 114, W: 270, H: 30}}},
		},
	})
	log.AddPage(audit.PageAudit{
		Page:     2,
		Risk:     audit.RiskNone,
		Signals:  audit.Signals{HasText: true, TextChars: 100},
		Findings: []audit.Finding{},
	})
	return log
}

func TestRegistry_BuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"json", "text"} {
		f, ok := Get(name)
		require.True(t, ok, "formatter %s missing", name)
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Description())
		assert.NotEmpty(t, f.FileExtension())
	}
	assert.Contains(t, List(), "json")
	assert.Contains(t, List(), "text")
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export("xml", sampleLog(), nil, Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestJSONFormatter_EmitsSchema(t *testing.T) {
	out, err := Export("json", sampleLog(), nil, Options{})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, audit.Schema, m["schema"])
	assert.Equal(t, audit.SchemaVersion, m["schema_version"])
}

func TestJSONFormatter_AppendsActions(t *testing.T) {
	actions := &audit.ActionsSummary{RemovedOverlayOpsEstimate: 1, Note: audit.CleanNote}
	out, err := Export("json", sampleLog(), actions, Options{})
	require.NoError(t, err)

	assert.Contains(t, out, "removed_overlay_ops_estimate")
	assert.Contains(t, out, audit.CleanNote)
}

func TestTextFormatter_Report(t *testing.T) {
	out, err := Export("text", sampleLog(), nil, Options{NoColor: true, Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out, "sample.pdf")
	assert.Contains(t, out, "page 1: FLAGGED (confidence 55)")
	assert.Contains(t, out, "page 2: none")
	assert.Contains(t, out, "suspected overlay rectangles: 1")
	assert.Contains(t, out, "1 page(s) flagged")
	assert.Contains(t, out, "dark_rects=1")
}

func TestTextFormatter_ActionsSection(t *testing.T) {
	actions := &audit.ActionsSummary{
		RemovedRedactAnnotsEstimate: 1,
		RemovedAnnotsPages:          1,
		RemovedOverlayOpsEstimate:   2,
		Note:                        audit.CleanNote,
	}
	out, err := Export("text", sampleLog(), actions, Options{NoColor: true})
	require.NoError(t, err)

	assert.Contains(t, out, "Cleaning actions:")
	assert.Contains(t, out, "removed overlay ops (estimate): 2")
	assert.True(t, strings.Contains(out, audit.CleanNote))
}
