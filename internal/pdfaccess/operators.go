// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfaccess

import (
	"strconv"
	"strings"
)

// Op is one entry of a page's operator list. Args is a shape-typed view of
// the operands: a run of numeric operands collapses into a single []float64,
// strings stay string, arrays of mixed content stay []any. Path construction
// sequences (m/l/c/v/y/re/h) are folded into a single "constructPath" entry
// whose Args[1] is the flat coordinate array, so consumers can reason about
// argument shapes without depending on the codec's operator vocabulary.
type Op struct {
	Name string
	Args []any
}

var pathConstructionOps = map[string]bool{
	"m": true, "l": true, "c": true, "v": true, "y": true, "re": true, "h": true,
}

var pathPaintOps = map[string]bool{
	"f": true, "F": true, "f*": true, "B": true, "B*": true,
	"b": true, "b*": true, "S": true, "s": true, "n": true,
}

// ParseOperators tokenizes a decoded content stream into an operator list.
// Unrecognized or malformed constructs are skipped, never fatal: the
// reconstructor downstream tolerates gaps.
func ParseOperators(content []byte) []Op {
	lex := &lexer{data: content}
	var ops []Op
	var operands []any

	// Path construction state, folded on the next paint operator.
	var pathCodes []float64
	var pathCoords []float64

	flushPath := func() {
		if len(pathCodes) == 0 && len(pathCoords) == 0 {
			return
		}
		ops = append(ops, Op{
			Name: "constructPath",
			Args: []any{pathCodes, pathCoords},
		})
		pathCodes = nil
		pathCoords = nil
	}

	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokOperand:
			operands = append(operands, tok.value)
		case tokOperator:
			name := tok.text
			switch {
			case name == "BI":
				// Inline image: binary payload, skip through EI.
				lex.skipInlineImage()
				operands = nil
			case pathConstructionOps[name]:
				pathCodes = append(pathCodes, float64(len(pathCodes)))
				pathCoords = append(pathCoords, numericOperands(operands)...)
				operands = nil
			case pathPaintOps[name]:
				flushPath()
				ops = append(ops, Op{Name: name, Args: groupOperands(operands)})
				operands = nil
			default:
				ops = append(ops, Op{Name: name, Args: groupOperands(operands)})
				operands = nil
			}
		}
	}
	flushPath()
	return ops
}

// groupOperands collapses consecutive numeric operands into []float64 runs
// and passes other operand kinds through unchanged.
func groupOperands(operands []any) []any {
	var args []any
	var nums []float64
	flush := func() {
		if nums != nil {
			args = append(args, nums)
			nums = nil
		}
	}
	for _, o := range operands {
		if n, ok := o.(float64); ok {
			nums = append(nums, n)
			continue
		}
		flush()
		args = append(args, o)
	}
	flush()
	return args
}

func numericOperands(operands []any) []float64 {
	var nums []float64
	for _, o := range operands {
		if n, ok := o.(float64); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

// lexer is a minimal PDF content-stream tokenizer.
type lexer struct {
	data []byte
	pos  int
}

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokOperator
)

type token struct {
	kind  tokenKind
	text  string // operator name
	value any    // operand value: float64, string, []any, map[string]any
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() (token, bool) {
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.data) {
			return token{}, false
		}

		b := l.data[l.pos]
		switch {
		case b == '[':
			l.pos++
			return token{kind: tokOperand, value: l.readArray()}, true
		case b == '(':
			l.pos++
			return token{kind: tokOperand, value: l.readLiteralString()}, true
		case b == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOperand, value: l.readDict()}, true
			}
			l.pos++
			return token{kind: tokOperand, value: l.readHexString()}, true
		case b == '/':
			l.pos++
			return token{kind: tokOperand, value: "/" + l.readName()}, true
		case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
			if n, ok := l.readNumber(); ok {
				return token{kind: tokOperand, value: n}, true
			}
			l.pos++
		case b == ']' || b == '{' || b == '}' || b == ')' || b == '>':
			// Stray delimiters are skipped.
			l.pos++
		default:
			name := l.readRegular()
			if name == "" {
				l.pos++
				continue
			}
			switch name {
			case "true":
				return token{kind: tokOperand, value: true}, true
			case "false":
				return token{kind: tokOperand, value: false}, true
			case "null":
				return token{kind: tokOperand, value: nil}, true
			}
			return token{kind: tokOperator, text: name}, true
		}
	}
}

// readArray parses the remainder of an array, collapsing to []float64 when
// every element is numeric.
func (l *lexer) readArray() any {
	var items []any
	allNums := true
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.data) || l.data[l.pos] == ']' {
			if l.pos < len(l.data) {
				l.pos++
			}
			break
		}
		tok, ok := l.next()
		if !ok {
			break
		}
		if tok.kind != tokOperand {
			continue
		}
		if _, isNum := tok.value.(float64); !isNum {
			allNums = false
		}
		items = append(items, tok.value)
	}
	if allNums && len(items) > 0 {
		nums := make([]float64, len(items))
		for i, it := range items {
			nums[i] = it.(float64)
		}
		return nums
	}
	return items
}

func (l *lexer) readDict() any {
	dict := map[string]any{}
	var key string
	for l.pos < len(l.data) {
		l.skipSpaceAndComments()
		if l.pos+1 < len(l.data) && l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			l.pos += 2
			break
		}
		tok, ok := l.next()
		if !ok {
			break
		}
		if tok.kind != tokOperand {
			continue
		}
		if key == "" {
			if s, ok := tok.value.(string); ok {
				key = s
				continue
			}
			continue
		}
		dict[key] = tok.value
		key = ""
	}
	return dict
}

func (l *lexer) readLiteralString() string {
	var sb strings.Builder
	depth := 1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '\\':
			if l.pos >= len(l.data) {
				return sb.String()
			}
			esc := l.data[l.pos]
			l.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					val := int(esc - '0')
					for i := 0; i < 2 && l.pos < len(l.data); i++ {
						c := l.data[l.pos]
						if c < '0' || c > '7' {
							break
						}
						val = val*8 + int(c-'0')
						l.pos++
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(esc)
				}
			}
		case '(':
			depth++
			sb.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return sb.String()
			}
			sb.WriteByte(b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

func (l *lexer) readHexString() string {
	var sb strings.Builder
	var hi int = -1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			break
		}
		v := hexVal(b)
		if v < 0 {
			continue
		}
		if hi < 0 {
			hi = v
		} else {
			sb.WriteByte(byte(hi*16 + v))
			hi = -1
		}
	}
	if hi >= 0 {
		sb.WriteByte(byte(hi * 16))
	}
	return sb.String()
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

func (l *lexer) readName() string {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) readNumber() (float64, bool) {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if (b >= '0' && b <= '9') || b == '.' || b == '+' || b == '-' {
			l.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (l *lexer) readRegular() string {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// skipInlineImage advances past an inline image payload, stopping after a
// whitespace-delimited EI marker.
func (l *lexer) skipInlineImage() {
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' {
			before := l.pos == 0 || isWhitespace(l.data[l.pos-1])
			afterIdx := l.pos + 2
			after := afterIdx >= len(l.data) || isWhitespace(l.data[afterIdx])
			if before && after {
				l.pos += 2
				return
			}
		}
		l.pos++
	}
	l.pos = len(l.data)
}
