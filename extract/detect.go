package extract

import (
	"context"
	"os"
	"strings"
)

// Info holds cheap facts about a PDF, gathered without OCR.
type Info struct {
	PageCount  int
	FileSize   int64
	TotalChars int
	HasText    bool
}

// DetectTextLayer reports whether the PDF carries a usable text layer:
// at least minChars runes of extractable text across all pages. It is a
// cheap pre-check for deciding up front whether a file is a scan.
func (e *PDFExtractor) DetectTextLayer(ctx context.Context, path string, minChars int) (bool, int, error) {
	doc, err := e.Extract(ctx, path)
	if err != nil {
		return false, 0, err
	}
	total := 0
	for _, p := range doc.Pages {
		total += len([]rune(strings.TrimSpace(p)))
	}
	return total >= minChars, total, nil
}

// GetInfo returns basic information about the PDF.
func (e *PDFExtractor) GetInfo(ctx context.Context, path string, minChars int) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Path: path, Stage: "stat", Err: err}
	}

	doc, err := e.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range doc.Pages {
		total += len([]rune(strings.TrimSpace(p)))
	}

	return &Info{
		PageCount:  doc.PageCount,
		FileSize:   fi.Size(),
		TotalChars: total,
		HasText:    total >= minChars,
	}, nil
}
