// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdfaccess wraps the pdfcpu and ledongthuc/pdf codecs behind the
// narrow capability the analysis and cleaning pipelines need: page
// enumeration, operator lists, positioned text items, annotations, and
// content-stream read/write.
package pdfaccess

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfMagic is the required file header prefix.
const pdfMagic = "%PDF-"

// Document is a parsed PDF held in memory. It owns a pdfcpu context for
// structural access and keeps the original bytes for the text reader, which
// parses independently.
type Document struct {
	ctx *model.Context
	raw []byte
}

// ValidateHeader checks the %PDF- magic without parsing the document.
func ValidateHeader(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return ErrMalformedPDF
	}
	return nil
}

// Open parses data into a Document. Encrypted documents are handled
// best-effort: validation runs relaxed and decryption is attempted with an
// empty password; files pdfcpu cannot open surface ErrParseFailed.
func Open(data []byte) (*Document, error) {
	if err := ValidateHeader(data); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return &Document{ctx: ctx, raw: data}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Raw returns the original input bytes the document was parsed from.
func (d *Document) Raw() []byte {
	return d.raw
}

// PageSize returns the page's MediaBox dimensions in PDF user space,
// consulting inherited page attributes and falling back to US Letter.
func (d *Document) PageSize(pageNr int) (w, h float64, err error) {
	pageDict, _, inhPAttrs, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d: %w", pageNr, err)
	}

	var mediaBox *types.Rectangle
	if mb, found := pageDict.Find("MediaBox"); found {
		if obj, err := d.ctx.Dereference(mb); err == nil {
			if arr, ok := obj.(types.Array); ok {
				mediaBox = types.RectForArray(arr)
			}
		}
	}
	if mediaBox == nil && inhPAttrs != nil && inhPAttrs.MediaBox != nil {
		mediaBox = inhPAttrs.MediaBox
	}
	if mediaBox == nil {
		mediaBox = types.NewRectangle(0, 0, 612, 792)
	}

	return mediaBox.Width(), mediaBox.Height(), nil
}

// ContentStreamRefs returns the indirect references of the page's content
// streams, preserving order. A page may carry a single stream or an array.
func (d *Document) ContentStreamRefs(pageNr int) ([]types.IndirectRef, error) {
	pageDict, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNr, err)
	}

	entry, found := pageDict.Find("Contents")
	if !found {
		return nil, nil
	}

	var refs []types.IndirectRef
	switch contents := entry.(type) {
	case types.IndirectRef:
		refs = append(refs, contents)
	case types.Array:
		for _, item := range contents {
			if ref, ok := item.(types.IndirectRef); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

// StreamInfo describes one content stream: its dictionary filters and raw
// and (when decodable) decoded bytes.
type StreamInfo struct {
	Ref        types.IndirectRef
	Raw        []byte
	Decoded    []byte
	HasFilter  bool // a Filter entry was present
	FlateOnly  bool // the filter pipeline is exactly one FlateDecode
	DecodeErr  error
	streamDict types.StreamDict
}

// StreamInfoForRef dereferences and decodes a content stream. Streams whose
// filter pipeline is neither empty nor a single FlateDecode are returned
// with only Raw populated; the stripper leaves them untouched.
func (d *Document) StreamInfoForRef(ref types.IndirectRef) (*StreamInfo, error) {
	obj, err := d.ctx.Dereference(ref)
	if err != nil {
		return nil, err
	}
	sd, ok := obj.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("object %s is not a stream", ref)
	}

	info := &StreamInfo{Ref: ref, Raw: sd.Raw, streamDict: sd}

	if _, found := sd.Dict.Find("Filter"); found {
		info.HasFilter = true
		info.FlateOnly = len(sd.FilterPipeline) == 1 &&
			sd.FilterPipeline[0].Name == "FlateDecode"
		if !info.FlateOnly {
			return info, nil
		}
	}

	if err := sd.Decode(); err != nil {
		info.DecodeErr = err
		return info, nil
	}
	info.Decoded = sd.Content
	return info, nil
}

// ReplaceStream swaps a content stream's body for newBody, written
// uncompressed: the Filter and DecodeParms entries are dropped and Length is
// updated, so previously decompressed bodies stay readable as emitted.
func (d *Document) ReplaceStream(info *StreamInfo, newBody []byte) error {
	sd := info.streamDict
	sd.Content = newBody
	sd.Raw = newBody
	sd.FilterPipeline = nil
	delete(sd.Dict, "Filter")
	delete(sd.Dict, "DecodeParms")
	sd.Dict["Length"] = types.Integer(len(newBody))
	streamLength := int64(len(newBody))
	sd.StreamLength = &streamLength

	entry, found := d.ctx.FindTableEntryForIndRef(&info.Ref)
	if !found {
		return fmt.Errorf("no xref entry for %s", info.Ref)
	}
	entry.Object = sd
	return nil
}

// AnnotationSubtypes returns the Subtype of every annotation on the page,
// stringified. Annotations without a resolvable subtype are skipped.
func (d *Document) AnnotationSubtypes(pageNr int) ([]string, error) {
	pageDict, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNr, err)
	}

	entry, found := pageDict.Find("Annots")
	if !found {
		return nil, nil
	}
	obj, err := d.ctx.Dereference(entry)
	if err != nil {
		return nil, nil
	}
	arr, ok := obj.(types.Array)
	if !ok {
		return nil, nil
	}

	var subtypes []string
	for _, item := range arr {
		annotObj, err := d.ctx.Dereference(item)
		if err != nil {
			continue
		}
		annotDict, ok := annotObj.(types.Dict)
		if !ok {
			continue
		}
		st, found := annotDict.Find("Subtype")
		if !found {
			continue
		}
		if name, ok := st.(types.Name); ok {
			subtypes = append(subtypes, string(name))
		} else {
			subtypes = append(subtypes, strings.TrimPrefix(st.String(), "/"))
		}
	}
	return subtypes, nil
}

// DeletePageAnnots removes the page's Annots entry entirely. It reports
// whether an entry was present.
func (d *Document) DeletePageAnnots(pageNr int) (bool, error) {
	pageDict, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return false, fmt.Errorf("page %d: %w", pageNr, err)
	}
	if _, found := pageDict.Find("Annots"); !found {
		return false, nil
	}
	delete(pageDict, "Annots")
	return true, nil
}

// Serialize writes the document back to bytes with object streams enabled.
func (d *Document) Serialize() ([]byte, error) {
	d.ctx.Configuration.WriteObjectStream = true

	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}
	return buf.Bytes(), nil
}
