// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"fmt"
	"image"

	"github.com/examkit/pdf-qcrop/logger"
)

// CandidateRegion is a content run detected in stitched space, rows
// [YStart, YEnd) at full stitched width.
type CandidateRegion struct {
	YStart, YEnd int
}

func (r CandidateRegion) Height() int { return r.YEnd - r.YStart }

type detectParams struct {
	whitespaceThreshold uint8
	minWhitespaceRatio  float64
	minGapHeight        int
	minQuestionHeight   int
}

// rowIsWhitespace classifies a stitched row. The statistic is the fraction
// of pixels at or above the luminance threshold; a ratio below 1.0 keeps
// the classifier stable against scanner noise and stray specks.
func rowIsWhitespace(img *image.Gray, y int, p detectParams) bool {
	b := img.Rect
	w := b.Dx()
	if w == 0 {
		return true
	}
	white := 0
	off := img.PixOffset(b.Min.X, b.Min.Y+y)
	for x := 0; x < w; x++ {
		if img.Pix[off+x] >= p.whitespaceThreshold {
			white++
		}
	}
	return float64(white)/float64(w) >= p.minWhitespaceRatio
}

// detectRegions scans the stitched bitmap top to bottom and returns the
// content runs separated by whitespace gaps of at least minGapHeight rows
// (a run of exactly minGapHeight splits). Shorter whitespace runs are
// intra-question spacing and are folded into the surrounding content.
// Content runs shorter than minQuestionHeight are merged into their
// successor, never discarded; a trailing short run with no successor is
// merged into its predecessor. Leading and trailing whitespace produce no
// region. The result depends only on pixel content and the parameters.
func detectRegions(img *image.Gray, p detectParams) []CandidateRegion {
	height := img.Rect.Dy()

	// Maximal content runs with leading/trailing whitespace trimmed.
	var runs []CandidateRegion
	start := -1
	for y := 0; y < height; y++ {
		if rowIsWhitespace(img, y, p) {
			if start >= 0 {
				runs = append(runs, CandidateRegion{YStart: start, YEnd: y})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = y
		}
	}
	if start >= 0 {
		runs = append(runs, CandidateRegion{YStart: start, YEnd: height})
	}

	// Fold runs separated by sub-threshold gaps into one region.
	var regions []CandidateRegion
	for _, run := range runs {
		if n := len(regions); n > 0 && run.YStart-regions[n-1].YEnd < p.minGapHeight {
			regions[n-1].YEnd = run.YEnd
			continue
		}
		regions = append(regions, run)
	}

	// A region too short to stand alone is a fragment of its neighbor.
	regions = mergeShortRegions(regions, p.minQuestionHeight)

	logger.Debug(fmt.Sprintf("Regions detected: rows=%d runs=%d regions=%d", height, len(runs), len(regions)), true)
	return regions
}

func mergeShortRegions(regions []CandidateRegion, minHeight int) []CandidateRegion {
	var out []CandidateRegion
	pending := -1 // YStart of a short region awaiting its successor
	for _, r := range regions {
		if pending >= 0 {
			r.YStart = pending
			pending = -1
		}
		if r.Height() < minHeight {
			pending = r.YStart
			continue
		}
		out = append(out, r)
	}
	if pending >= 0 {
		// No successor to absorb it; fall back to the predecessor.
		last := regions[len(regions)-1]
		if len(out) > 0 {
			out[len(out)-1].YEnd = last.YEnd
		} else {
			out = append(out, CandidateRegion{YStart: pending, YEnd: last.YEnd})
		}
	}
	return out
}
