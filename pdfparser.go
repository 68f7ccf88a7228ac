// Package pdfparser extracts text and tables from PDF files with a
// quality-driven OCR fallback. Primary extraction reads the embedded text
// layer; when the result falls below a configurable quality threshold, the
// pages that came up short are rasterized and sent through OCR, and accepted
// tokens are merged back without discarding anything primary extraction
// found. The final document is classified by weighted keyword heuristics and
// validated against quality thresholds.
//
// Basic usage:
//
//	result, err := pdfparser.Open("invoice.pdf").Extract(ctx)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Text)
//	fmt.Println(pdfparser.Summary(result.Meta))
//
// With options:
//
//	result, err := pdfparser.Open("scan.pdf").
//	    WithOCR("en", "ru").
//	    ConfidenceThreshold(0.6).
//	    Extract(ctx)
//
// OCR requires the ocr build tag and a system Tesseract installation; see
// the ocr package. Without it the pipeline degrades to primary extraction
// only and reports that OCR never ran.
package pdfparser

import (
	"context"

	"github.com/katyLiminche/pdf-parser-app/extract"
	"github.com/katyLiminche/pdf-parser-app/model"
)

// ExtractionError is the fatal error type returned when the input PDF
// cannot be read at all.
type ExtractionError = extract.Error

// Open prepares an Extractor for the given PDF. Configuration methods
// return new instances, so a configured Extractor is safe to share.
//
// Example:
//
//	result, err := pdfparser.Open("document.pdf").Extract(ctx)
func Open(path string) *Extractor {
	return &Extractor{
		path:   path,
		config: DefaultConfig(),
	}
}

// ExtractTextAndTables is a one-call convenience around Open: it runs the
// full pipeline with the given configuration and returns the final text,
// the extracted tables, and the run's metadata.
func ExtractTextAndTables(ctx context.Context, path string, config ExtractionConfig) (string, []model.Table, *model.ExtractionMeta, error) {
	result, err := Open(path).WithConfig(config).Extract(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	return result.Text, result.Tables, result.Meta, nil
}
