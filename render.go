// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/examkit/pdf-qcrop/logger"
	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"
)

// PageBitmap is one rendered PDF page. The pixel buffer is owned by the
// pipeline run until the assembler crops from it; it is never mutated.
type PageBitmap struct {
	Index int // 1-based page number
	Img   *image.Gray
}

func (p *PageBitmap) Width() int  { return p.Img.Rect.Dx() }
func (p *PageBitmap) Height() int { return p.Img.Rect.Dy() }

// Rasterizer opens a PDF source for page-by-page rendering.
// Implementations must be safe for use from concurrent document runs.
type Rasterizer interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document renders the pages of one open PDF. Pages are rendered lazily,
// one at a time, in page order.
type Document interface {
	NumPages() int
	// RenderPage rasterizes the 1-based page at the given resolution.
	RenderPage(ctx context.Context, index int, dpi int) (*PageBitmap, error)
	Close() error
}

// DocumentInfo is a cheap probe of a PDF before full processing.
// Page dimensions are reported in pixels at the probe resolution.
type DocumentInfo struct {
	Filename   string
	Path       string
	PageCount  int
	PageWidth  int
	PageHeight int
	ProbeDPI   int
}

const probeDPI = 72

// FitzRasterizer renders pages through MuPDF.
type FitzRasterizer struct{}

func NewFitzRasterizer() *FitzRasterizer { return &FitzRasterizer{} }

func (r *FitzRasterizer) Open(ctx context.Context, path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to open PDF: path=%s err=%v", path, err), true)
		return nil, &RenderError{Path: path, Err: err}
	}
	logger.Debug(fmt.Sprintf("PDF opened: path=%s pages=%d", path, doc.NumPage()), true)
	return &fitzDocument{doc: doc, path: path}, nil
}

type fitzDocument struct {
	doc  *fitz.Document
	path string
}

func (d *fitzDocument) NumPages() int { return d.doc.NumPage() }

func (d *fitzDocument) RenderPage(ctx context.Context, index int, dpi int) (*PageBitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// go-fitz pages are 0-based.
	rgba, err := d.doc.ImageDPI(index-1, float64(dpi))
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to rasterize page: path=%s page=%d err=%v", d.path, index, err), true)
		return nil, &RenderError{Path: d.path, Page: index, Err: err}
	}
	gray := image.NewGray(rgba.Bounds())
	draw.Draw(gray, gray.Rect, rgba, rgba.Bounds().Min, draw.Src)
	logger.Debug(fmt.Sprintf("Page rasterized: path=%s page=%d size=%dx%d", d.path, index, gray.Rect.Dx(), gray.Rect.Dy()), true)
	return &PageBitmap{Index: index, Img: gray}, nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }

// probeInfo renders the first page at a low resolution to report the
// document shape without paying for a full-resolution render.
func probeInfo(ctx context.Context, doc Document, path string) (DocumentInfo, error) {
	info := DocumentInfo{
		Filename:  filepath.Base(path),
		Path:      path,
		PageCount: doc.NumPages(),
		ProbeDPI:  probeDPI,
	}
	if info.PageCount == 0 {
		return info, nil
	}
	first, err := doc.RenderPage(ctx, 1, probeDPI)
	if err != nil {
		return DocumentInfo{}, err
	}
	info.PageWidth = first.Width()
	info.PageHeight = first.Height()
	return info, nil
}
