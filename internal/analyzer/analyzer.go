// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package analyzer walks a PDF page by page and produces the risk audit for
// improperly redacted content: filled near-black rectangles, their overlap
// with text geometry, and redaction annotations.
package analyzer

import (
	"context"
	"fmt"

	"redact-check/internal/audit"
	"redact-check/internal/observability"
	"redact-check/internal/pdfaccess"
)

// maxBBoxSamples caps the rectangle samples embedded per finding.
const maxBBoxSamples = 3

// Analyzer produces audit logs from PDF bytes.
type Analyzer struct {
	observer *observability.StandardObserver
}

// New creates an Analyzer. A nil observer disables observability.
func New(observer *observability.StandardObserver) *Analyzer {
	return &Analyzer{observer: observer}
}

// Analyze runs the full pipeline over data and returns the audit log.
func (a *Analyzer) Analyze(data []byte, fileName string) (*audit.Log, error) {
	return a.AnalyzeContext(context.Background(), data, fileName)
}

// AnalyzeContext is Analyze with cooperative cancellation, checked between
// pages. On cancellation it returns ErrCancelled with no partial result.
func (a *Analyzer) AnalyzeContext(ctx context.Context, data []byte, fileName string) (*audit.Log, error) {
	finish := a.observer.StartTiming("analyzer", "analyze_document", fileName)

	doc, err := pdfaccess.Open(data)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// The text codec parses independently; when it refuses the file the
	// pages simply report no text.
	textReader, trErr := pdfaccess.NewTextReader(data)
	if trErr != nil {
		a.observer.LogEvent("analyzer", "text_reader_unavailable", false, map[string]interface{}{
			"error": trErr.Error(),
		})
		textReader = nil
	}

	log := audit.NewLog(fileName, data, doc.PageCount())

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		if err := ctx.Err(); err != nil {
			finish(false, map[string]interface{}{"page": pageNr, "cancelled": true})
			return nil, fmt.Errorf("%w: page %d", pdfaccess.ErrCancelled, pageNr)
		}
		log.AddPage(a.analyzePage(doc, textReader, pageNr))
	}

	finish(true, map[string]interface{}{
		"pages":         doc.PageCount(),
		"pages_flagged": log.Summary.PagesFlagged,
	})
	return log, nil
}

// analyzePage computes one page's signals, findings, and verdict. Structural
// trouble on a page degrades to empty signals rather than failing the
// document.
func (a *Analyzer) analyzePage(doc *pdfaccess.Document, textReader *pdfaccess.TextReader, pageNr int) audit.PageAudit {
	userW, userH, err := doc.PageSize(pageNr)
	if err != nil {
		a.observer.LogEvent("analyzer", "page_size_failed", false, map[string]interface{}{
			"page": pageNr, "error": err.Error(),
		})
		return audit.PageAudit{Page: pageNr, Risk: audit.RiskNone, Findings: []audit.Finding{}}
	}
	vp := NewViewport(userW, userH)

	ops := a.pageOperators(doc, pageNr)
	rects := ReconstructRects(ops, vp)

	var items []pdfaccess.TextItem
	if textReader != nil {
		items = textReader.TextItems(pageNr)
	}
	boxes, chars := TextBoxes(items, vp)

	subtypes, err := doc.AnnotationSubtypes(pageNr)
	if err != nil {
		subtypes = nil
	}
	redactAnnots := CountRedactAnnots(subtypes)

	areaSum := 0.0
	for _, r := range rects {
		areaSum += r.Area
	}
	areaRatio := 0.0
	if vp.Area() > 0 {
		areaRatio = areaSum / vp.Area()
	}

	signals := audit.Signals{
		HasText:            chars >= TextCharThreshold,
		TextChars:          chars,
		DarkRects:          len(rects),
		DarkRectAreaRatio:  audit.Round4(areaRatio),
		RedactAnnots:       redactAnnots,
		OverlapsTextLikely: AnyOverlap(rects, boxes),
	}

	confidence, risk := Score(signals, rects, areaRatio, vp.Area())

	findings := []audit.Finding{}
	if len(rects) > 0 {
		samples := make([]audit.BBox, 0, maxBBoxSamples)
		for _, r := range rects {
			if len(samples) == maxBBoxSamples {
				break
			}
			samples = append(samples, audit.BBox{X: r.X, Y: r.Y, W: r.W, H: r.H})
		}
		findings = append(findings, audit.Finding{
			Type:        audit.FindingOverlayRect,
			Count:       len(rects),
			BBoxSamples: samples,
		})
	}
	if redactAnnots > 0 {
		findings = append(findings, audit.Finding{
			Type:  audit.FindingRedactAnnotation,
			Count: redactAnnots,
		})
	}

	return audit.PageAudit{
		Page:       pageNr,
		Risk:       risk,
		Confidence: confidence,
		Signals:    signals,
		Findings:   findings,
	}
}

// pageOperators concatenates the page's decoded content streams and
// tokenizes them into one operator list. Streams that cannot be decoded are
// skipped.
func (a *Analyzer) pageOperators(doc *pdfaccess.Document, pageNr int) []pdfaccess.Op {
	refs, err := doc.ContentStreamRefs(pageNr)
	if err != nil {
		return nil
	}

	var content []byte
	for _, ref := range refs {
		info, err := doc.StreamInfoForRef(ref)
		if err != nil || info.Decoded == nil {
			if err != nil {
				a.observer.LogEvent("analyzer", "content_stream_skipped", false, map[string]interface{}{
					"page": pageNr, "error": err.Error(),
				})
			}
			continue
		}
		content = append(content, info.Decoded...)
		content = append(content, '\n')
	}
	if len(content) == 0 {
		return nil
	}
	return pdfaccess.ParseOperators(content)
}
