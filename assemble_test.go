// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleImage_SingleBox(t *testing.T) {
	page := newWhitePage(1, 400, 300)
	fillRows(page.Img, 0, 400, 100, 200, 0)
	pages := map[int]*PageBitmap{1: page}

	region := ResolvedRegion{
		Boxes: []SubBox{{Page: 1, X1: 50, Y1: 100, X2: 350, Y2: 200}},
		Pages: []int{1},
	}

	img, err := assembleImage(pages, region)
	require.NoError(t, err)

	assert.Equal(t, 300, img.Rect.Dx())
	assert.Equal(t, 100, img.Rect.Dy())
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(299, 99).Y)
}

func TestAssembleImage_CropIsIndependentBuffer(t *testing.T) {
	page := newWhitePage(1, 200, 200)
	pages := map[int]*PageBitmap{1: page}

	region := ResolvedRegion{
		Boxes: []SubBox{{Page: 1, X1: 0, Y1: 0, X2: 100, Y2: 100}},
		Pages: []int{1},
	}
	img, err := assembleImage(pages, region)
	require.NoError(t, err)

	// Mutating the page afterwards must not leak into the crop.
	fillRows(page.Img, 0, 200, 0, 200, 0)
	assert.Equal(t, uint8(255), img.GrayAt(50, 50).Y)
}

func TestAssembleImage_ConcatenatesPageSpanningCrops(t *testing.T) {
	p1 := newWhitePage(1, 400, 300)
	p2 := newWhitePage(2, 400, 300)
	fillRows(p1.Img, 0, 400, 250, 300, 0) // bottom of page 1
	fillRows(p2.Img, 0, 400, 0, 80, 10)   // top of page 2, off-black

	pages := map[int]*PageBitmap{1: p1, 2: p2}
	region := ResolvedRegion{
		Boxes: []SubBox{
			{Page: 1, X1: 0, Y1: 250, X2: 400, Y2: 300},
			{Page: 2, X1: 0, Y1: 0, X2: 400, Y2: 80},
		},
		Pages: []int{1, 2},
	}

	img, err := assembleImage(pages, region)
	require.NoError(t, err)

	assert.Equal(t, 130, img.Rect.Dy())
	assert.Equal(t, uint8(0), img.GrayAt(200, 0).Y, "first crop on top")
	assert.Equal(t, uint8(0), img.GrayAt(200, 49).Y)
	assert.Equal(t, uint8(10), img.GrayAt(200, 50).Y, "second crop follows contiguously")
	assert.Equal(t, uint8(10), img.GrayAt(200, 129).Y)
}

func TestAssembleImage_MissingPage(t *testing.T) {
	region := ResolvedRegion{
		Boxes: []SubBox{{Page: 7, X1: 0, Y1: 0, X2: 10, Y2: 10}},
		Pages: []int{7},
	}
	_, err := assembleImage(map[int]*PageBitmap{}, region)
	assert.Error(t, err)
}

func TestTrimWhitespace(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*image.Gray)
		padding    int
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "content in the middle",
			setup:      func(img *image.Gray) { fillRows(img, 40, 60, 40, 60, 0) },
			padding:    10,
			wantWidth:  40,
			wantHeight: 40,
		},
		{
			name:       "padding clamped at the edges",
			setup:      func(img *image.Gray) { fillRows(img, 0, 20, 0, 20, 0) },
			padding:    10,
			wantWidth:  30,
			wantHeight: 30,
		},
		{
			name:       "no padding",
			setup:      func(img *image.Gray) { fillRows(img, 30, 70, 20, 80, 0) },
			padding:    0,
			wantWidth:  40,
			wantHeight: 60,
		},
		{
			name:       "all white returns original",
			setup:      func(img *image.Gray) {},
			padding:    10,
			wantWidth:  100,
			wantHeight: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newWhitePage(1, 100, 100).Img
			tt.setup(img)
			out := trimWhitespace(img, 250, tt.padding)
			assert.Equal(t, tt.wantWidth, out.Rect.Dx())
			assert.Equal(t, tt.wantHeight, out.Rect.Dy())
		})
	}
}
