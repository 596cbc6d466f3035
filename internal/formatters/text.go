// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"redact-check/internal/audit"
)

// TextFormatter renders a human-readable report with optional color.
type TextFormatter struct{}

func init() {
	Register(&TextFormatter{})
}

// Name returns the name of the formatter
func (f *TextFormatter) Name() string {
	return "text"
}

// Description returns a brief description of what this formatter outputs
func (f *TextFormatter) Description() string {
	return "Human-readable audit report"
}

// FileExtension returns the recommended file extension for this format
func (f *TextFormatter) FileExtension() string {
	return ".txt"
}

// Format renders the audit report.
func (f *TextFormatter) Format(log *audit.Log, actions *audit.ActionsSummary, options Options) (string, error) {
	flagged := color.New(color.FgRed, color.Bold).SprintFunc()
	ok := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	if options.NoColor {
		plain := fmt.Sprint
		flagged, ok, dim = plain, plain, plain
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Redaction audit: %s (%d bytes, %d pages)\n",
		log.Source.FileName, log.Source.FileSizeBytes, log.Source.PageCount)
	fmt.Fprintf(&sb, "%s\n", dim("sha256 "+log.Source.SHA256))

	for _, page := range log.Pages {
		verdict := ok("none")
		if page.Risk == audit.RiskFlagged {
			verdict = flagged("FLAGGED")
		}
		fmt.Fprintf(&sb, "  page %d: %s (confidence %d)\n", page.Page, verdict, page.Confidence)

		if options.Verbose {
			s := page.Signals
			fmt.Fprintf(&sb, "    text_chars=%d dark_rects=%d area_ratio=%.4f redact_annots=%d overlaps_text=%v\n",
				s.TextChars, s.DarkRects, s.DarkRectAreaRatio, s.RedactAnnots, s.OverlapsTextLikely)
		}
		for _, finding := range page.Findings {
			switch finding.Type {
			case audit.FindingOverlayRect:
				fmt.Fprintf(&sb, "    suspected overlay rectangles: %d\n", finding.Count)
				for _, bb := range finding.BBoxSamples {
					fmt.Fprintf(&sb, "      at (%.0f, %.0f) size %.0fx%.0f\n", bb.X, bb.Y, bb.W, bb.H)
				}
			case audit.FindingRedactAnnotation:
				fmt.Fprintf(&sb, "    redaction annotations: %d\n", finding.Count)
			}
		}
	}

	if log.Summary.PagesFlagged > 0 {
		fmt.Fprintf(&sb, "Result: %s\n", flagged(fmt.Sprintf("%d page(s) flagged", log.Summary.PagesFlagged)))
	} else {
		fmt.Fprintf(&sb, "Result: %s\n", ok("no pages flagged"))
	}

	if actions != nil {
		fmt.Fprintf(&sb, "Cleaning actions:\n")
		fmt.Fprintf(&sb, "  removed overlay ops (estimate): %d\n", actions.RemovedOverlayOpsEstimate)
		fmt.Fprintf(&sb, "  pages with annotations removed: %d\n", actions.RemovedAnnotsPages)
		fmt.Fprintf(&sb, "  removed redact annotations (estimate): %d\n", actions.RemovedRedactAnnotsEstimate)
		fmt.Fprintf(&sb, "  note: %s\n", actions.Note)
	}
	return sb.String(), nil
}
