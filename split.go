// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"fmt"
	"image"
)

// ColumnStrip is one vertical band of a page bitmap. The pixel buffer is a
// sub-view of the page; nothing is copied until the assembler crops.
type ColumnStrip struct {
	Page   int // 1-based source page number
	Column int // 0 = leftmost
	X0, X1 int // band extent on the source page, [X0, X1)
	Img    *image.Gray
}

func (s *ColumnStrip) Width() int  { return s.X1 - s.X0 }
func (s *ColumnStrip) Height() int { return s.Img.Rect.Dy() }

// splitColumns divides a page into columns of equal usable width. The page
// width minus (columns-1) gaps of gapRatio*width each is divided evenly;
// rounding leftovers go to the last column so the bands always reach the
// right edge.
func splitColumns(page *PageBitmap, columns int, gapRatio float64) ([]ColumnStrip, error) {
	if columns < 1 {
		return nil, &ConfigError{Field: "Columns", Reason: fmt.Sprintf("must be >= 1, got %d", columns)}
	}
	if gapRatio*float64(columns-1) >= 1 {
		return nil, &ConfigError{
			Field:  "ColumnGapRatio",
			Reason: fmt.Sprintf("gaps consume the whole page width: ratio=%v columns=%d", gapRatio, columns),
		}
	}

	w, h := page.Width(), page.Height()
	gapPx := int(gapRatio * float64(w))
	usable := w - (columns-1)*gapPx
	band := usable / columns

	strips := make([]ColumnStrip, 0, columns)
	for c := 0; c < columns; c++ {
		x0 := c * (band + gapPx)
		x1 := x0 + band
		if c == columns-1 {
			x1 = w
		}
		rect := image.Rect(x0, 0, x1, h).Add(page.Img.Rect.Min)
		strips = append(strips, ColumnStrip{
			Page:   page.Index,
			Column: c,
			X0:     x0,
			X1:     x1,
			Img:    page.Img.SubImage(rect).(*image.Gray),
		})
	}
	return strips, nil
}

// columnLabel names a column position the way the output schema expects.
func columnLabel(index, total int) string {
	switch {
	case total == 1:
		return "full"
	case total == 2 && index == 0:
		return "left"
	case total == 2 && index == 1:
		return "right"
	default:
		return fmt.Sprintf("col%d", index+1)
	}
}
