// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package audit defines the stable audit-log schema shared by the analyzer
// and the cleaner, and the builder that assembles it.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"redact-check/internal/version"
)

// Schema identity. Changing any of these, or the fixed forensic parameters
// they describe, is a schema-level change.
const (
	Schema        = "com.example.redact-check"
	SchemaVersion = "1.0.0"
	ToolName      = "redact-check"
	ToolBuild     = "web"
)

// CleanNote accompanies every actions summary.
const CleanNote = "Overlay removal is heuristic; verify output pages listed in the audit."

// Risk is the binary per-page verdict.
type Risk string

const (
	RiskFlagged Risk = "flagged"
	RiskNone    Risk = "none"
)

// Finding type tags.
const (
	FindingOverlayRect      = "suspected_overlay_rect"
	FindingRedactAnnotation = "redact_annotation"
)

// Tool identifies the producer of an audit log.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
}

// Source describes the analyzed input.
type Source struct {
	FileName      string `json:"file_name"`
	FileSizeBytes int    `json:"file_size_bytes"`
	SHA256        string `json:"sha256"`
	PageCount     int    `json:"page_count"`
}

// Summary aggregates the per-page verdicts.
type Summary struct {
	PagesFlagged int `json:"pages_flagged"`
}

// Signals are the raw per-page measurements feeding the risk score.
type Signals struct {
	HasText            bool    `json:"has_text"`
	TextChars          int     `json:"text_chars"`
	DarkRects          int     `json:"dark_rects"`
	DarkRectAreaRatio  float64 `json:"dark_rect_area_ratio"`
	RedactAnnots       int     `json:"redact_annots"`
	OverlapsTextLikely bool    `json:"overlaps_text_likely"`
}

// BBox is a device-space bounding box sample.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Finding is one piece of evidence on a page, tagged by Type.
type Finding struct {
	Type        string `json:"type"`
	Count       int    `json:"count"`
	BBoxSamples []BBox `json:"bbox_samples,omitempty"`
}

// PageAudit is the per-page audit record.
type PageAudit struct {
	Page       int       `json:"page"`
	Risk       Risk      `json:"risk"`
	Confidence int       `json:"confidence"`
	Signals    Signals   `json:"signals"`
	Findings   []Finding `json:"findings"`
}

// Log is the document-level audit record. It is produced once per analysis
// and immutable thereafter.
type Log struct {
	Schema        string      `json:"schema"`
	SchemaVersion string      `json:"schema_version"`
	Tool          Tool        `json:"tool"`
	Source        Source      `json:"source"`
	GeneratedAt   string      `json:"generated_at"`
	Summary       Summary     `json:"summary"`
	Pages         []PageAudit `json:"pages"`
}

// ActionsSummary reports what the cleaner did to a document.
type ActionsSummary struct {
	RemovedRedactAnnotsEstimate int    `json:"removed_redact_annots_estimate"`
	RemovedAnnotsPages          int    `json:"removed_annots_pages"`
	RemovedOverlayOpsEstimate   int    `json:"removed_overlay_ops_estimate"`
	Note                        string `json:"note"`
}

// NewLog creates a log for the given input, computing its SHA-256 digest and
// stamping the generation time in ISO-8601 UTC.
func NewLog(fileName string, data []byte, pageCount int) *Log {
	digest := sha256.Sum256(data)
	return &Log{
		Schema:        Schema,
		SchemaVersion: SchemaVersion,
		Tool: Tool{
			Name:    ToolName,
			Version: version.Version,
			Build:   ToolBuild,
		},
		Source: Source{
			FileName:      fileName,
			FileSizeBytes: len(data),
			SHA256:        hex.EncodeToString(digest[:]),
			PageCount:     pageCount,
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     Summary{},
		Pages:       []PageAudit{},
	}
}

// AddPage appends a page record and updates the flagged-page count.
func (l *Log) AddPage(pa PageAudit) {
	l.Pages = append(l.Pages, pa)
	if pa.Risk == RiskFlagged {
		l.Summary.PagesFlagged++
	}
}

// Round4 rounds an area ratio to four decimal places for the wire format.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
