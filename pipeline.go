// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/examkit/pdf-qcrop/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Processor defines the contract for segmenting exam PDFs into per-question
// image crops.
type Processor interface {
	Process(ctx context.Context, path string) (*DocumentResult, error)
	ProcessTo(ctx context.Context, path string, sink Sink) (*DocumentResult, error)
	ProcessBatch(ctx context.Context, paths []string) []BatchResult
}

// DocumentResult is the complete, internally consistent output of one
// document run. A document either yields one of these or a diagnosed error,
// never a partial sequence.
type DocumentResult struct {
	Path           string
	PageCount      int
	StitchedHeight int
	Questions      []*Question
}

// BatchResult pairs one batch input with its outcome. A failed document
// never aborts its siblings.
type BatchResult struct {
	Path   string
	Result *DocumentResult
	Err    error
}

// processor runs the segmentation pipeline with concurrency control across
// documents. Within a document the pipeline is strictly sequential: the
// coordinate map and sequence ids depend on append order.
type processor struct {
	cfg *Config
	sem *semaphore.Weighted
	ras Rasterizer
}

// NewProcessor validates the config and creates a processor backed by the
// MuPDF rasterizer.
func NewProcessor(cfg *Config) *processor {
	return NewProcessorWith(cfg, NewFitzRasterizer())
}

// NewProcessorWith creates a processor with a caller-supplied rasterizer.
func NewProcessorWith(cfg *Config, ras Rasterizer) *processor {
	//Validate the config object
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	//Set the logger function
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug(fmt.Sprintf("Processor initialized: dpi=%d columns=%d max_concurrent_docs=%d",
		cfg.DPI, cfg.Columns, cfg.MaxConcurrentDocs), true)

	return &processor{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrentDocs)),
		ras: ras,
	}
}

// Info probes a document without running the full pipeline.
func (p *processor) Info(ctx context.Context, path string) (DocumentInfo, error) {
	doc, err := p.ras.Open(ctx, path)
	if err != nil {
		return DocumentInfo{}, err
	}
	defer doc.Close()
	return probeInfo(ctx, doc, path)
}

// Process runs the full pipeline on one document: rasterize pages, split
// them into column strips, stitch the strips into one reading-order bitmap,
// detect question regions, resolve them back to page bounding boxes, and
// crop one output image per question.
func (p *processor) Process(ctx context.Context, path string) (*DocumentResult, error) {
	logger.Debug(fmt.Sprintf("Starting segmentation: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		logger.Debug(fmt.Sprintf("Failed to acquire slot: err=%v", err), true)
		return nil, err
	}
	defer p.sem.Release(1)

	doc, err := p.ras.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	total := doc.NumPages()
	logger.Debug(fmt.Sprintf("Total pages detected: path=%s pages=%d", path, total), true)
	if total == 0 {
		logger.Debug(fmt.Sprintf("No pages found in PDF: path=%s", path), true)
		return &DocumentResult{Path: path}, nil
	}

	// Rasterize lazily, split, and stitch. The page bitmaps stay resident
	// for the assembler's crops at the end of the run.
	pages := make(map[int]*PageBitmap, total)
	stitcher := NewStitcher()
	for i := 1; i <= total; i++ {
		page, err := doc.RenderPage(ctx, i, p.cfg.DPI)
		if err != nil {
			return nil, err
		}
		pages[i] = page

		strips, err := splitColumns(page, p.cfg.Columns, p.cfg.ColumnGapRatio)
		if err != nil {
			return nil, err
		}
		for _, strip := range strips {
			stitcher.Append(strip)
		}
	}

	stitched, cmap := stitcher.Stitch()

	// Detection needs the complete stitched bitmap: gap boundaries depend
	// on global context, including runs that straddle page breaks.
	regions := detectRegions(stitched, detectParams{
		whitespaceThreshold: uint8(p.cfg.WhitespaceThreshold),
		minWhitespaceRatio:  p.cfg.MinWhitespaceRatio,
		minGapHeight:        p.cfg.MinGapHeight,
		minQuestionHeight:   p.cfg.MinQuestionHeight,
	})
	logger.Debug(fmt.Sprintf("Candidate regions: path=%s count=%d", path, len(regions)), true)

	questions := make([]*Question, 0, len(regions))
	for i, c := range regions {
		resolved, err := resolveRegion(c, cmap)
		if err != nil {
			logger.Error("coordinate map inconsistency", "path", path, "err", err)
			return nil, err
		}

		img, err := assembleImage(pages, resolved)
		if err != nil {
			return nil, err
		}
		if p.cfg.TrimWhitespace {
			img = trimWhitespace(img, uint8(p.cfg.WhitespaceThreshold), p.cfg.TrimPadding)
		}

		seq := i + 1
		questions = append(questions, &Question{
			Seq:    seq,
			ID:     fmt.Sprintf("q%03d", seq),
			BoxID:  uuid.NewString(),
			Region: resolved,
			Column: columnLabel(resolved.ColumnIndex, p.cfg.Columns),
			Image:  img,
		})
	}

	logger.Debug(fmt.Sprintf("Segmentation completed: path=%s questions=%d", path, len(questions)), true)
	return &DocumentResult{
		Path:           path,
		PageCount:      total,
		StitchedHeight: cmap.Height(),
		Questions:      questions,
	}, nil
}

// ProcessTo runs Process and hands every question to the sink, then
// finalizes the sink with the document run summary.
func (p *processor) ProcessTo(ctx context.Context, path string, sink Sink) (*DocumentResult, error) {
	res, err := p.Process(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, q := range res.Questions {
		if err := sink.WriteQuestion(ctx, q); err != nil {
			return nil, fmt.Errorf("sink question %s: %w", q.ID, err)
		}
	}
	if err := sink.Finalize(ctx, res.Path); err != nil {
		return nil, fmt.Errorf("finalize sink: %w", err)
	}
	return res, nil
}

// ProcessBatch segments independent documents in parallel, gated by the
// concurrency slot inside Process. Results keep input order; each entry
// carries its own error.
func (p *processor) ProcessBatch(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, len(paths))
	numWorkers := p.adjustWorkerCount(len(paths))
	logger.Debug(fmt.Sprintf("Starting batch: docs=%d workers=%d", len(paths), numWorkers), true)

	jobs := make(chan int, len(paths))
	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				res, err := p.Process(ctx, paths[i])
				results[i] = BatchResult{Path: paths[i], Result: res, Err: err}
				if err != nil {
					logger.Debug(fmt.Sprintf("Batch document failed: worker_id=%d path=%s err=%v", id, paths[i], err), true)
				}
			}
		}(w)
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Debug(fmt.Sprintf("Batch completed: docs=%d", len(paths)), true)
	return results
}

func (p *processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}

func (p *processor) adjustWorkerCount(jobs int) int {
	workers := p.cfg.MaxConcurrentDocs
	if jobs < workers {
		workers = jobs
	}
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
