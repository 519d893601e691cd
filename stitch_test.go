// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendPages splits each page and appends the strips in page-major,
// column-major order, the way the pipeline does.
func appendPages(t *testing.T, s *Stitcher, pages []*PageBitmap, columns int, gapRatio float64) {
	t.Helper()
	for _, page := range pages {
		strips, err := splitColumns(page, columns, gapRatio)
		require.NoError(t, err)
		for _, strip := range strips {
			s.Append(strip)
		}
	}
}

func TestStitcher_MapCoversStitchedHeightExactly(t *testing.T) {
	pages := []*PageBitmap{
		newWhitePage(1, 1000, 700),
		newWhitePage(2, 1000, 700),
		newWhitePage(3, 1000, 650),
	}
	s := NewStitcher()
	appendPages(t, s, pages, 2, 0.05)

	img, m := s.Stitch()

	segs := m.Segments()
	require.Len(t, segs, 6)

	// Contiguous, non-overlapping, full cover.
	assert.Equal(t, 0, segs[0].Start)
	for i := 1; i < len(segs); i++ {
		assert.Equal(t, segs[i-1].End, segs[i].Start)
	}
	assert.Equal(t, img.Rect.Dy(), m.Height())
	assert.Equal(t, 700+700+700+700+650+650, m.Height())
}

func TestStitcher_SegmentsKeepAppendOrder(t *testing.T) {
	pages := []*PageBitmap{
		newWhitePage(1, 600, 400),
		newWhitePage(2, 600, 400),
	}
	s := NewStitcher()
	appendPages(t, s, pages, 2, 0.05)

	_, m := s.Stitch()

	want := []struct{ page, column int }{
		{1, 0}, {1, 1}, {2, 0}, {2, 1},
	}
	segs := m.Segments()
	require.Len(t, segs, len(want))
	for i, w := range want {
		assert.Equal(t, w.page, segs[i].Page, "segment %d page", i)
		assert.Equal(t, w.column, segs[i].Column, "segment %d column", i)
	}
}

func TestCoordinateMap_Locate(t *testing.T) {
	pages := []*PageBitmap{
		newWhitePage(1, 1000, 500),
		newWhitePage(2, 1000, 500),
	}
	s := NewStitcher()
	appendPages(t, s, pages, 2, 0.05)
	_, m := s.Stitch()

	tests := []struct {
		name     string
		row      int
		wantPage int
		wantCol  int
		wantOK   bool
	}{
		{"first row", 0, 1, 0, true},
		{"inside first strip", 499, 1, 0, true},
		{"first row of second strip", 500, 1, 1, true},
		{"inside page two", 1200, 2, 0, true},
		{"last row", 1999, 2, 1, true},
		{"past the end", 2000, 0, 0, false},
		{"negative", -1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, ok := m.Locate(tt.row)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantPage, seg.Page)
				assert.Equal(t, tt.wantCol, seg.Column)
				assert.LessOrEqual(t, seg.Start, tt.row)
				assert.Greater(t, seg.End, tt.row)
			}
		})
	}
}

func TestStitcher_PreservesStripPixels(t *testing.T) {
	page := newWhitePage(1, 200, 100)
	// Mark a distinctive band in the right column only.
	fillRows(page.Img, 120, 200, 40, 60, 0)

	s := NewStitcher()
	appendPages(t, s, []*PageBitmap{page}, 2, 0.1)
	img, m := s.Stitch()

	// gap = 20, band = 90: right strip occupies stitched rows [100, 200).
	segs := m.Segments()
	require.Len(t, segs, 2)
	right := segs[1]
	assert.Equal(t, 110, right.X0)
	assert.Equal(t, 200, right.X1)

	// The band must appear at stitched rows 140..159 and nowhere in the
	// left strip's range.
	assert.Equal(t, uint8(0), img.GrayAt(15, right.Start+45).Y)
	assert.Equal(t, uint8(255), img.GrayAt(15, 45).Y)
}
