// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cleaner

import "redact-check/internal/pdfaccess"

// SanitizePageAnnots deletes the page's annotation array entirely. It
// reports whether an Annots entry was present. The sanitizer does not
// classify annotation subtypes; redaction-annotation accounting comes from
// the audit advisory.
func SanitizePageAnnots(doc *pdfaccess.Document, pageNr int) (bool, error) {
	return doc.DeletePageAnnots(pageNr)
}
