package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdf "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// PDFExtractor extracts text and tables from a PDF using pdfcpu. It also
// serves page images to the OCR fallback, so it implements both Extractor
// and Rasterizer.
//
// Scanned PDFs typically embed each page as one large image; RenderPage
// returns the largest image on the page rather than rendering content
// streams, which pdfcpu does not do.
type PDFExtractor struct {
	conf *pdf.Configuration
}

// NewPDFExtractor returns a pdfcpu-backed extractor with the default
// pdfcpu configuration.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{conf: pdf.NewDefaultConfiguration()}
}

// Extract reads the PDF and returns per-page text plus recovered tables.
// Pages that carry no text layer yield empty strings, preserving page
// indices for the OCR fallback. A file that cannot be read at all returns
// an *Error.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*model.ExtractedDocument, error) {
	pctx, err := e.readContext(path)
	if err != nil {
		return nil, &Error{Path: path, Stage: "read", Err: err}
	}

	pages := make([]string, 0, pctx.PageCount)
	var tables []model.Table

	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Path: path, Stage: "extract", Err: err}
		}

		pageText := extractPageText(pctx, pageNr)
		pages = append(pages, pageText)
		tables = append(tables, RecoverTables(pageText, pageNr-1)...)
	}

	doc := model.NewDocument(pages, tables)
	doc.PageCount = pctx.PageCount
	return doc, nil
}

// RenderPage returns the encoded bytes of the largest image embedded on the
// page. Pages without images return an error, which the OCR coordinator
// treats as a local page failure.
func (e *PDFExtractor) RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := e.readContext(path)
	if err != nil {
		return nil, &Error{Path: path, Stage: "read", Err: err}
	}

	imgs, err := pdfcpu.ExtractPageImages(pctx, pageIndex+1, false)
	if err != nil {
		return nil, err
	}

	// Deterministic iteration: object numbers ascending.
	objNrs := make([]int, 0, len(imgs))
	for objNr := range imgs {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	var largest []byte
	for _, objNr := range objNrs {
		data, err := io.ReadAll(imgs[objNr])
		if err != nil {
			continue
		}
		if len(data) > len(largest) {
			largest = data
		}
	}
	if len(largest) == 0 {
		return nil, fmt.Errorf("page %d: %w", pageIndex, ErrNoPageImage)
	}
	return largest, nil
}

// HasImages reports whether the page carries any image XObjects. The OCR
// coordinator consults it before RenderPage; a page with no images has
// nothing for OCR to read, so the engine call is skipped outright.
func (e *PDFExtractor) HasImages(path string, pageIndex int) bool {
	pctx, err := e.readContext(path)
	if err != nil {
		return false
	}
	return len(pdfcpu.ImageObjNrs(pctx, pageIndex+1)) > 0
}

func (e *PDFExtractor) readContext(path string) (*pdf.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return api.ReadValidateAndOptimize(f, e.conf)
}

// extractPageText pulls the page's content stream and parses its text
// operators. Failures yield an empty page rather than an error: a page
// without parseable content is exactly what the OCR fallback exists for.
func extractPageText(pctx *pdf.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// ErrNoPageImage is returned by RenderPage for pages without embedded
// images. There is nothing for OCR to look at on such a page.
var ErrNoPageImage = errors.New("no embedded image on page")
