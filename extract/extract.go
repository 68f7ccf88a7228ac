// Package extract defines the primary-extraction contracts the pipeline
// builds on and provides a pdfcpu-backed implementation.
//
// Primary extraction reads the PDF's embedded content directly; it never
// looks at page images. The Rasterizer interface supplies page images to the
// OCR fallback when primary extraction comes up short.
package extract

import (
	"context"
	"fmt"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// Extractor performs primary text and table extraction on a PDF.
// A failure to read the input at all is fatal and returned as an *Error.
type Extractor interface {
	Extract(ctx context.Context, path string) (*model.ExtractedDocument, error)
}

// Rasterizer produces an encoded image for one page, for OCR consumption.
// Page failures are local: the caller records them and moves on.
type Rasterizer interface {
	RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error)
}

// Error is a fatal extraction failure: the input could not be read at all.
// Path and Stage give the caller enough context to diagnose the failure.
type Error struct {
	Path  string
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed at %s for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
