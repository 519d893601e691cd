// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Question is one segmented exam question in reading order. The geometry
// fields are fixed once the pipeline finishes; Number and Theme are
// placeholders owned by downstream collaborators (OCR, labeling) and may be
// filled in later without re-running the pipeline.
type Question struct {
	Seq    int    // 1-based sequence id in reading order
	ID     string // zero-padded artifact id, e.g. "q001"
	BoxID  string // globally unique id
	Region ResolvedRegion
	Column string // "left", "right", ...
	Image  *image.Gray

	Number int    // 0 = not yet known
	Theme  string // "" = not yet known
}

// assembleImage crops each sub-box from its source page and concatenates
// the crops vertically in resolved order. Each crop is a fresh buffer,
// independent of the page bitmaps.
func assembleImage(pages map[int]*PageBitmap, region ResolvedRegion) (*image.Gray, error) {
	crops := make([]*image.Gray, 0, len(region.Boxes))
	width, height := 0, 0
	for _, b := range region.Boxes {
		page, ok := pages[b.Page]
		if !ok {
			return nil, fmt.Errorf("assemble: no bitmap for page %d", b.Page)
		}
		rect := image.Rect(b.X1, b.Y1, b.X2, b.Y2).Add(page.Img.Rect.Min)
		crop := image.NewGray(image.Rect(0, 0, b.Width(), b.Height()))
		draw.Draw(crop, crop.Rect, page.Img, rect.Min, draw.Src)
		crops = append(crops, crop)
		if b.Width() > width {
			width = b.Width()
		}
		height += b.Height()
	}

	if len(crops) == 1 {
		return crops[0], nil
	}

	// Page-spanning region: stack the crops on a white background,
	// centering any narrower piece.
	out := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Rect, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	y := 0
	for _, crop := range crops {
		xOff := (width - crop.Rect.Dx()) / 2
		dst := image.Rect(xOff, y, xOff+crop.Rect.Dx(), y+crop.Rect.Dy())
		draw.Draw(out, dst, crop, image.Point{}, draw.Src)
		y += crop.Rect.Dy()
	}
	return out, nil
}

// trimWhitespace cuts near-white margins off a cropped question, keeping
// padding pixels of breathing room on each side. An image with no content
// below the threshold is returned unchanged.
func trimWhitespace(img *image.Gray, threshold uint8, padding int) *image.Gray {
	b := img.Rect
	w, h := b.Dx(), b.Dy()

	yMin, yMax, xMin, xMax := h, -1, w, -1
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if img.Pix[off+x] < threshold {
				if y < yMin {
					yMin = y
				}
				if y > yMax {
					yMax = y
				}
				if x < xMin {
					xMin = x
				}
				if x > xMax {
					xMax = x
				}
			}
		}
	}
	if yMax < 0 {
		return img
	}

	yMin = max(0, yMin-padding)
	yMax = min(h-1, yMax+padding)
	xMin = max(0, xMin-padding)
	xMax = min(w-1, xMax+padding)

	out := image.NewGray(image.Rect(0, 0, xMax-xMin+1, yMax-yMin+1))
	draw.Draw(out, out.Rect, img, b.Min.Add(image.Pt(xMin, yMin)), draw.Src)
	return out
}
