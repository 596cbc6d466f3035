// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfaccess

import "errors"

// Error kinds surfaced by the analysis and cleaning pipelines. Callers match
// them with errors.Is; parse and serialize failures wrap the underlying
// pdfcpu error for detail.
var (
	// ErrEmptyInput indicates a zero-length input buffer.
	ErrEmptyInput = errors.New("empty input")

	// ErrMalformedPDF indicates the input does not start with the %PDF- magic.
	ErrMalformedPDF = errors.New("malformed PDF: missing %PDF- header")

	// ErrParseFailed indicates the underlying parser refused the file.
	ErrParseFailed = errors.New("PDF parse failed")

	// ErrSerializeFailed indicates the writer refused to emit the document.
	ErrSerializeFailed = errors.New("PDF serialize failed")

	// ErrCancelled indicates cooperative cancellation at a page boundary.
	ErrCancelled = errors.New("operation cancelled")
)
