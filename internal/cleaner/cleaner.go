// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cleaner rewrites improperly redacted PDFs: it strips redaction
// annotations and removes the black-rectangle overlay idioms from page
// content streams, so hidden content becomes visible and verifiable.
package cleaner

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"

	"redact-check/internal/audit"
	"redact-check/internal/observability"
	"redact-check/internal/pdfaccess"
)

// Result is a completed cleaning run: the full rewritten document and the
// summary of actions taken. Cleaning emits either a complete new document or
// none.
type Result struct {
	CleanedBytes []byte
	Actions      audit.ActionsSummary
}

// Cleaner drives the annotation sanitizer and the overlay stripper over
// every page of a document.
type Cleaner struct {
	observer *observability.StandardObserver
}

// New creates a Cleaner. A nil observer disables observability.
func New(observer *observability.StandardObserver) *Cleaner {
	return &Cleaner{observer: observer}
}

// Clean reopens data from scratch, sanitizes and strips every page, and
// reserializes. The audit log is advisory only: it feeds the
// removed-redact-annotation estimate and never changes behavior.
func (c *Cleaner) Clean(data []byte, auditLog *audit.Log) (*Result, error) {
	return c.CleanContext(context.Background(), data, auditLog)
}

// CleanContext is Clean with cooperative cancellation, checked between
// pages.
func (c *Cleaner) CleanContext(ctx context.Context, data []byte, auditLog *audit.Log) (*Result, error) {
	finish := c.observer.StartTiming("cleaner", "clean_document", "")

	doc, err := pdfaccess.Open(data)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	actions := audit.ActionsSummary{Note: audit.CleanNote}

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		if err := ctx.Err(); err != nil {
			finish(false, map[string]interface{}{"page": pageNr, "cancelled": true})
			return nil, fmt.Errorf("%w: page %d", pdfaccess.ErrCancelled, pageNr)
		}

		hadAnnots, err := SanitizePageAnnots(doc, pageNr)
		if err == nil && hadAnnots {
			actions.RemovedAnnotsPages++
		}

		removed, err := c.stripPageStreams(doc, pageNr)
		if err != nil {
			c.observer.LogEvent("cleaner", "page_strip_failed", false, map[string]interface{}{
				"page": pageNr, "error": err.Error(),
			})
			continue
		}
		actions.RemovedOverlayOpsEstimate += removed
	}

	if auditLog != nil {
		for _, page := range auditLog.Pages {
			actions.RemovedRedactAnnotsEstimate += page.Signals.RedactAnnots
		}
	}

	cleaned, err := doc.Serialize()
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	finish(true, map[string]interface{}{
		"removed_overlay_ops":  actions.RemovedOverlayOpsEstimate,
		"removed_annots_pages": actions.RemovedAnnotsPages,
	})
	return &Result{CleanedBytes: cleaned, Actions: actions}, nil
}

// stripPageStreams runs the overlay stripper over each content stream of a
// page, rewriting streams with at least one substitution.
func (c *Cleaner) stripPageStreams(doc *pdfaccess.Document, pageNr int) (int, error) {
	refs, err := doc.ContentStreamRefs(pageNr)
	if err != nil {
		return 0, err
	}

	totalRemoved := 0
	for _, ref := range refs {
		info, err := doc.StreamInfoForRef(ref)
		if err != nil {
			continue
		}
		if info.DecodeErr != nil {
			c.observer.LogEvent("cleaner", "stream_decode_failed", false, map[string]interface{}{
				"page": pageNr, "error": info.DecodeErr.Error(),
			})
			continue
		}
		if info.Decoded == nil {
			// Unsupported filter pipeline; left untouched.
			continue
		}

		body := info.Decoded
		if !info.HasFilter {
			if inflated, ok := speculativeInflate(body); ok {
				body = inflated
			}
		}

		if !ASCIIDominant(body) {
			continue
		}

		text := NormalizeNewlines(string(body))
		cleaned, removed := StripCommonBlackRectFills(text)
		if removed == 0 {
			continue
		}

		if err := doc.ReplaceStream(info, []byte(cleaned)); err != nil {
			c.observer.LogEvent("cleaner", "stream_replace_failed", false, map[string]interface{}{
				"page": pageNr, "error": err.Error(),
			})
			continue
		}
		totalRemoved += removed
	}
	return totalRemoved, nil
}

// speculativeInflate attempts zlib decompression of a stream that carries no
// filter entry but opens with a zlib magic. On success the filter-less
// rewrite downstream keeps the document consistent.
func speculativeInflate(data []byte) ([]byte, bool) {
	if len(data) < 2 || data[0] != 0x78 {
		return nil, false
	}
	switch data[1] {
	case 0x9C, 0x01, 0xDA:
	default:
		return nil, false
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return out, true
}
