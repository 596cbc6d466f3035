// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import "redact-check/internal/audit"

// Scoring weights and thresholds. Contract-level constants, like the
// geometry parameters in rects.go.
const (
	OverlapBonus      = 40
	AnnotationBonus   = 50
	ModerateAreaBonus = 15
	ElongationBonus   = 10
	NoTextPenalty     = 20
	GiantRectPenalty  = 30

	FlagThreshold     = 20
	TextCharThreshold = 20

	ModerateAreaLow  = 0.005
	ModerateAreaHigh = 0.2
	ElongationAspect = 3.0
)

// Score combines a page's signals into a confidence in [0,100] and a binary
// verdict. areaRatio is the unrounded dark-rectangle coverage.
func Score(sig audit.Signals, rects []Rect, areaRatio, pageArea float64) (int, audit.Risk) {
	score := 0

	if sig.OverlapsTextLikely {
		score += OverlapBonus
	}
	if sig.RedactAnnots > 0 {
		score += AnnotationBonus
	}

	if areaRatio >= ModerateAreaLow && areaRatio <= ModerateAreaHigh {
		score += ModerateAreaBonus
	} else {
		for _, r := range rects {
			if r.AspectElongated(ElongationAspect) {
				score += ElongationBonus
				break
			}
		}
	}

	if !sig.HasText {
		score -= NoTextPenalty
	}
	for _, r := range rects {
		if r.Area > MaxRectAreaRatio*pageArea {
			score -= GiantRectPenalty
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	risk := audit.RiskNone
	if score >= FlagThreshold {
		risk = audit.RiskFlagged
	}
	return score, risk
}
