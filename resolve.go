// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import "fmt"

// SubBox is one page-local piece of a resolved region: a pixel bounding box
// [X1,X2) x [Y1,Y2) on a single source page.
type SubBox struct {
	Page           int
	X1, Y1, X2, Y2 int
}

func (b SubBox) Height() int { return b.Y2 - b.Y1 }
func (b SubBox) Width() int  { return b.X2 - b.X1 }

// ResolvedRegion is a candidate region translated back to source space.
// Boxes holds one entry per coordinate map segment the region overlapped,
// in stitched order; laying the boxes end to end reproduces the candidate
// region's pixel content exactly. Pages lists the distinct source pages
// touched, in the same order. ColumnIndex is taken from the topmost
// segment.
type ResolvedRegion struct {
	Boxes       []SubBox
	Pages       []int
	ColumnIndex int
}

func (r *ResolvedRegion) Height() int {
	h := 0
	for _, b := range r.Boxes {
		h += b.Height()
	}
	return h
}

// resolveRegion maps a stitched-space candidate through the coordinate map.
// Every overlapping segment contributes a sub-box clipped to the overlap and
// translated to the segment's column-local rows; the x-extent is the
// segment's column band on its source page. A candidate no segment overlaps
// means the map does not cover the stitched bitmap and aborts the document.
func resolveRegion(c CandidateRegion, m *CoordinateMap) (ResolvedRegion, error) {
	segs := m.overlapping(c.YStart, c.YEnd)
	if len(segs) == 0 {
		return ResolvedRegion{}, &ResolutionError{YStart: c.YStart, YEnd: c.YEnd}
	}

	region := ResolvedRegion{ColumnIndex: segs[0].Column}
	for _, seg := range segs {
		y0 := max(c.YStart, seg.Start)
		y1 := min(c.YEnd, seg.End)
		region.Boxes = append(region.Boxes, SubBox{
			Page: seg.Page,
			X1:   seg.X0,
			Y1:   y0 - seg.Start,
			X2:   seg.X1,
			Y2:   y1 - seg.Start,
		})
		if n := len(region.Pages); n == 0 || region.Pages[n-1] != seg.Page {
			region.Pages = append(region.Pages, seg.Page)
		}
	}

	if got, want := region.Height(), c.Height(); got != want {
		return ResolvedRegion{}, fmt.Errorf("resolve rows [%d,%d): sub-boxes cover %d rows, want %d: %w",
			c.YStart, c.YEnd, got, want, &ResolutionError{YStart: c.YStart, YEnd: c.YEnd})
	}
	return region, nil
}
