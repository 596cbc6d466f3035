// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cleaner

import (
	"regexp"
	"strconv"
	"strings"
)

// Stripper safety rails. The bounded windows and the BT guard are hard
// invariants: text blocks must never be matched.
const (
	// asciiGateRatio is the minimum share of tab/newline/CR/printable-ASCII
	// bytes for a stream to be eligible for rewriting.
	asciiGateRatio = 0.70

	// interLineCap bounds the length of any line between pattern anchors.
	interLineCap = 200

	// rectInterLineMax bounds the lines between a fill-color anchor and the
	// re operator in the rect-fill patterns.
	rectInterLineMax = 6

	// pathInterLineMax bounds each window of the path-based patterns.
	pathInterLineMax = 15
)

// overlayComment replaces every removed operator sequence.
const overlayComment = "% overlay removed"

// Signed and unsigned decimal literals as they appear in content streams.
const (
	numPat  = `[-+]?(?:\d+(?:\.\d+)?|\.\d+)`
	unumPat = `(?:\d+(?:\.\d+)?|\.\d+)`
)

// Rect-fill patterns: a fill-color line, up to six bounded intermediate
// lines (the fewest that complete a match), an re with non-negative width
// and height, then a fill operator.
var (
	rectFillRGB  = mustRectFill(`0 0 0 rg`)
	rectFillGray = mustRectFill(`0 g`)
)

func mustRectFill(open string) *regexp.Regexp {
	// The optional line is spelled out rectInterLineMax times: RE2 rejects a
	// {0,200} repeat nested inside a {0,6} repeat.
	interLine := `(?:[^\n]{0,` + strconv.Itoa(interLineCap) + `}\n)??`
	return regexp.MustCompile(
		`(?m)^[ \t]*` + open + `[ \t]*\n` +
			strings.Repeat(interLine, rectInterLineMax) +
			`[ \t]*` + numPat + `[ \t]+` + numPat + `[ \t]+` + unumPat + `[ \t]+` + unumPat + `[ \t]+re[ \t]*\n` +
			`[ \t]*(?:f\*?|B\*?)[ \t]*(?:\n|$)`)
}

var moveToLine = regexp.MustCompile(`^[ \t]*` + numPat + `[ \t]+` + numPat + `[ \t]+m[ \t]*$`)

// StripCommonBlackRectFills removes the recognized black-rectangle overlay
// idioms from a normalized-newline content stream body, replacing each with
// a neutral comment line. It returns the rewritten body and the number of
// removed sequences. A body with no matches passes through unchanged with a
// zero count.
func StripCommonBlackRectFills(text string) (string, int) {
	removed := 0

	for _, re := range []*regexp.Regexp{rectFillRGB, rectFillGray} {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			if strings.Contains(m, "BT") {
				// The window reached into a text block; leave it intact.
				return m
			}
			removed++
			return overlayComment + "\n"
		})
	}

	var n int
	text, n = stripPathRects(text, "0 0 0 rg")
	removed += n
	text, n = stripPathRects(text, "0 g")
	removed += n

	return text, removed
}

// stripPathRects removes the path-based rectangle idiom: q, then within a
// bounded BT-free window the fill color, then a moveto, then h, then f and Q
// on the following lines. The whole q..Q block collapses to a comment.
func stripPathRects(text, fillOpen string) (string, int) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	removed := 0

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) != "q" {
			out = append(out, lines[i])
			i++
			continue
		}

		end, ok := matchPathRect(lines, i, fillOpen)
		if !ok {
			out = append(out, lines[i])
			i++
			continue
		}

		out = append(out, overlayComment)
		removed++
		i = end + 1
	}

	if removed == 0 {
		return text, 0
	}
	return strings.Join(out, "\n"), removed
}

// matchPathRect checks whether the path-based idiom starts at lines[start]
// and returns the index of its closing Q line.
func matchPathRect(lines []string, start int, fillOpen string) (int, bool) {
	fillIdx, ok := scanWindow(lines, start, fillOpen)
	if !ok {
		return 0, false
	}

	moveIdx := -1
	for j := fillIdx + 1; j <= fillIdx+pathInterLineMax && j < len(lines); j++ {
		if moveToLine.MatchString(lines[j]) {
			moveIdx = j
			break
		}
		if !guardedLine(lines[j]) {
			return 0, false
		}
	}
	if moveIdx < 0 {
		return 0, false
	}

	closeIdx := -1
	for j := moveIdx + 1; j <= moveIdx+pathInterLineMax && j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "h" {
			closeIdx = j
			break
		}
		if !guardedLine(lines[j]) {
			return 0, false
		}
	}
	if closeIdx < 0 {
		return 0, false
	}

	if closeIdx+2 >= len(lines) {
		return 0, false
	}
	if strings.TrimSpace(lines[closeIdx+1]) != "f" {
		return 0, false
	}
	if strings.TrimSpace(lines[closeIdx+2]) != "Q" {
		return 0, false
	}
	return closeIdx + 2, true
}

// scanWindow finds the anchor line within the bounded BT-free window after
// start.
func scanWindow(lines []string, start int, anchor string) (int, bool) {
	for j := start + 1; j <= start+pathInterLineMax && j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == anchor {
			return j, true
		}
		if !guardedLine(lines[j]) {
			return 0, false
		}
	}
	return 0, false
}

// guardedLine enforces the inter-line rails: bounded length and no BT text
// block opener.
func guardedLine(line string) bool {
	return len(line) <= interLineCap && !strings.Contains(line, "BT")
}

// NormalizeNewlines maps CRLF and CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ASCIIDominant reports whether at least asciiGateRatio of the bytes are
// tab, newline, carriage return, or printable ASCII.
func ASCIIDominant(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	ok := 0
	for _, b := range data {
		if b == '\t' || b == '\n' || b == '\r' || (b >= 32 && b <= 126) {
			ok++
		}
	}
	return float64(ok)/float64(len(data)) >= asciiGateRatio
}
