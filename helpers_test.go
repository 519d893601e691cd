// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"context"
	"errors"
	"image"
	"image/color"
)

// newWhitePage builds a synthetic all-white page bitmap.
func newWhitePage(index, w, h int) *PageBitmap {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return &PageBitmap{Index: index, Img: img}
}

// fillRows paints rows [y0, y1) of img across [x0, x1) with the given value.
func fillRows(img *image.Gray, x0, x1, y0, y1 int, value uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
}

// stubRasterizer serves pre-built page bitmaps keyed by path, so pipeline
// tests run without MuPDF.
type stubRasterizer struct {
	docs map[string][]*PageBitmap
}

func (r *stubRasterizer) Open(ctx context.Context, path string) (Document, error) {
	pages, ok := r.docs[path]
	if !ok {
		return nil, &RenderError{Path: path, Err: errors.New("unreadable document")}
	}
	return &stubDocument{pages: pages}, nil
}

type stubDocument struct {
	pages []*PageBitmap
}

func (d *stubDocument) NumPages() int { return len(d.pages) }

func (d *stubDocument) RenderPage(ctx context.Context, index int, dpi int) (*PageBitmap, error) {
	if index < 1 || index > len(d.pages) {
		return nil, &RenderError{Page: index, Err: errors.New("page out of range")}
	}
	return d.pages[index-1], nil
}

func (d *stubDocument) Close() error { return nil }
