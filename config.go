// Copyright © 2026, Examkit Inc., Seoul, Republic of Korea.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package qcrop

import (
	"fmt"

	"github.com/examkit/pdf-qcrop/logger"
	"github.com/go-playground/validator/v10"
)

// ImageFormat selects the encoding of cropped question images.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	JPEG ImageFormat = "jpeg"
)

type Config struct {
	// Page rendering resolution in dots per inch.
	DPI int `validate:"min=36,max=1200"`

	// Page layout: number of vertical columns and the fraction of the page
	// width reserved as an excluded margin between each adjacent pair.
	Columns        int     `validate:"min=1,max=8"`
	ColumnGapRatio float64 `validate:"min=0,lt=1"`

	// Region detection. A row counts as whitespace when at least
	// MinWhitespaceRatio of its pixels have luminance >= WhitespaceThreshold.
	WhitespaceThreshold int     `validate:"min=0,max=255"`
	MinWhitespaceRatio  float64 `validate:"gt=0,max=1"`
	MinGapHeight        int     `validate:"min=1"`
	MinQuestionHeight   int     `validate:"min=1"`

	// Output image post-processing.
	TrimWhitespace bool
	TrimPadding    int `validate:"min=0"`

	ImageFormat  ImageFormat `validate:"oneof=png jpeg"`
	ImageQuality int         `validate:"min=1,max=100"`

	// Number of documents processed concurrently in a batch.
	MaxConcurrentDocs int `validate:"min=1,max=10"`

	DebugOn bool
	Logger  logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		DPI:                 300,
		Columns:             2,
		ColumnGapRatio:      0.05,
		WhitespaceThreshold: 250,
		MinWhitespaceRatio:  0.95,
		MinGapHeight:        30,
		MinQuestionHeight:   100,
		TrimWhitespace:      true,
		TrimPadding:         10,
		ImageFormat:         PNG,
		ImageQuality:        95,
		MaxConcurrentDocs:   4,
		DebugOn:             false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return &ConfigError{Reason: "invalid configuration", Err: err}
	}
	// Cross-field check: the inter-column gaps must not consume the page.
	if gap := cfg.ColumnGapRatio * float64(cfg.Columns-1); gap >= 1 {
		return &ConfigError{
			Field:  "ColumnGapRatio",
			Reason: fmt.Sprintf("gaps consume the whole page width: ratio=%v columns=%d", cfg.ColumnGapRatio, cfg.Columns),
		}
	}
	return nil
}
