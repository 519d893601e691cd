// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/examkit/pdf-qcrop/logger"
)

// Sink receives finished questions and, once a document completes, the
// run summary. Implementations own persistence; the pipeline never writes
// to disk itself.
type Sink interface {
	WriteQuestion(ctx context.Context, q *Question) error
	Finalize(ctx context.Context, sourcePDF string) error
}

// Manifest is the JSON sidecar written next to the cropped images.
type Manifest struct {
	SourcePDF      string           `json:"source_pdf"`
	ProcessedAt    string           `json:"processed_at"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []QuestionRecord `json:"questions"`
}

// QuestionRecord is one question's metadata stub. Number and Theme are
// null until a collaborator fills them in.
type QuestionRecord struct {
	ID          string      `json:"id"`
	BoxID       string      `json:"box_id"`
	Number      *int        `json:"number"`
	Theme       *string     `json:"theme"`
	ImagePath   string      `json:"image_path"`
	SourcePages []int       `json:"source_pages"`
	Column      string      `json:"column"`
	BBox        []BoxRecord `json:"bbox"`
}

// BoxRecord is one page-local bounding box of a question.
type BoxRecord struct {
	Page int `json:"page"`
	X1   int `json:"x1"`
	Y1   int `json:"y1"`
	X2   int `json:"x2"`
	Y2   int `json:"y2"`
}

func newQuestionRecord(q *Question, imagePath string) QuestionRecord {
	rec := QuestionRecord{
		ID:          q.ID,
		BoxID:       q.BoxID,
		ImagePath:   imagePath,
		SourcePages: q.Region.Pages,
		Column:      q.Column,
	}
	if q.Number > 0 {
		n := q.Number
		rec.Number = &n
	}
	if q.Theme != "" {
		t := q.Theme
		rec.Theme = &t
	}
	for _, b := range q.Region.Boxes {
		rec.BBox = append(rec.BBox, BoxRecord{Page: b.Page, X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2})
	}
	return rec
}

// DirSink writes question crops to <dir>/images/ and a metadata.json
// sidecar to <dir>. Not safe for concurrent use; give each document run
// its own sink.
type DirSink struct {
	dir     string
	format  ImageFormat
	quality int
	records []QuestionRecord
}

func NewDirSink(dir string, format ImageFormat, quality int) (*DirSink, error) {
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &DirSink{dir: dir, format: format, quality: quality}, nil
}

func (s *DirSink) WriteQuestion(ctx context.Context, q *Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := filepath.Join("images", fmt.Sprintf("%s.%s", q.ID, s.format))
	f, err := os.Create(filepath.Join(s.dir, rel))
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	switch s.format {
	case JPEG:
		err = jpeg.Encode(f, q.Image, &jpeg.Options{Quality: s.quality})
	default:
		err = png.Encode(f, q.Image)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}

	s.records = append(s.records, newQuestionRecord(q, rel))
	logger.Debug(fmt.Sprintf("Question image written: id=%s path=%s", q.ID, rel), true)
	return nil
}

func (s *DirSink) Finalize(ctx context.Context, sourcePDF string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := Manifest{
		SourcePDF:      sourcePDF,
		ProcessedAt:    time.Now().Format(time.RFC3339),
		TotalQuestions: len(s.records),
		Questions:      s.records,
	}
	data, err := sonic.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(s.dir, "metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	logger.Debug(fmt.Sprintf("Manifest written: path=%s questions=%d", path, len(s.records)), true)
	return nil
}

// Records exposes the accumulated metadata stubs, mainly so callers can
// enrich Number/Theme before Finalize.
func (s *DirSink) Records() []QuestionRecord { return s.records }
