// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import "fmt"

// RenderError reports a document or page that could not be rasterized.
// It is fatal for the whole document: no partial output is produced.
type RenderError struct {
	Path string
	Page int // 0 when the document itself failed to open
	Err  error
}

func (e *RenderError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("render %s page %d: %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration value. Invalid values are
// rejected at startup, never silently clamped.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ResolutionError reports a stitched row range that no coordinate map
// segment covers. The map is built to cover the stitched bitmap exactly,
// so this indicates a stitcher defect and aborts the document.
type ResolutionError struct {
	YStart, YEnd int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve: no map segment overlaps stitched rows [%d,%d)", e.YStart, e.YEnd)
}
