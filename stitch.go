// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/examkit/pdf-qcrop/logger"
	"golang.org/x/image/draw"
)

// Segment maps one contiguous stitched row range back to the column strip
// it was appended from.
type Segment struct {
	Start, End int // stitched rows [Start, End)
	Page       int // 1-based source page
	Column     int // 0 = leftmost
	X0, X1     int // strip x-extent on the source page
}

// CoordinateMap translates stitched rows back to their source strips.
// Segments are contiguous, non-overlapping, sorted by construction, and
// cover [0, Height()) exactly once.
type CoordinateMap struct {
	segments []Segment
}

func (m *CoordinateMap) Segments() []Segment { return m.segments }

func (m *CoordinateMap) Height() int {
	if len(m.segments) == 0 {
		return 0
	}
	return m.segments[len(m.segments)-1].End
}

// Locate finds the segment containing a stitched row by binary search.
func (m *CoordinateMap) Locate(row int) (Segment, bool) {
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].End > row
	})
	if i == len(m.segments) || row < m.segments[i].Start {
		return Segment{}, false
	}
	return m.segments[i], true
}

// overlapping returns, in stitched order, every segment intersecting
// [y0, y1).
func (m *CoordinateMap) overlapping(y0, y1 int) []Segment {
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].End > y0
	})
	var out []Segment
	for ; i < len(m.segments) && m.segments[i].Start < y1; i++ {
		out = append(out, m.segments[i])
	}
	return out
}

// Stitcher accumulates column strips, in page-major then column-major
// order, into one tall bitmap plus the coordinate map that makes the
// concatenation invertible. Append order is load-bearing: segments inherit
// it, and region detection depends on reading order.
type Stitcher struct {
	strips []ColumnStrip
	width  int
	height int
}

func NewStitcher() *Stitcher { return &Stitcher{} }

func (s *Stitcher) Append(strip ColumnStrip) {
	if w := strip.Width(); w > s.width {
		s.width = w
	}
	s.height += strip.Height()
	s.strips = append(s.strips, strip)
}

// Stitch concatenates the appended strips vertically. Narrower strips are
// centered on a white background band; the coordinate map is unaffected by
// the centering because sub-boxes are resolved against the strip's own
// x-extent on its source page.
func (s *Stitcher) Stitch() (*image.Gray, *CoordinateMap) {
	out := image.NewGray(image.Rect(0, 0, s.width, s.height))
	draw.Draw(out, out.Rect, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)

	m := &CoordinateMap{segments: make([]Segment, 0, len(s.strips))}
	y := 0
	for _, strip := range s.strips {
		h := strip.Height()
		xOff := (s.width - strip.Width()) / 2
		dst := image.Rect(xOff, y, xOff+strip.Width(), y+h)
		draw.Draw(out, dst, strip.Img, strip.Img.Rect.Min, draw.Src)
		m.segments = append(m.segments, Segment{
			Start:  y,
			End:    y + h,
			Page:   strip.Page,
			Column: strip.Column,
			X0:     strip.X0,
			X1:     strip.X1,
		})
		y += h
	}
	logger.Debug(fmt.Sprintf("Stitched bitmap built: strips=%d size=%dx%d", len(s.strips), s.width, s.height), true)
	return out, m
}
