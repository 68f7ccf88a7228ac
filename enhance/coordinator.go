// Package enhance coordinates the OCR fallback: it decides whether OCR is
// needed, which pages to send, runs the engine per page, and merges accepted
// tokens into the primary text without discarding anything primary
// extraction found.
package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katyLiminche/pdf-parser-app/extract"
	"github.com/katyLiminche/pdf-parser-app/model"
	"github.com/katyLiminche/pdf-parser-app/ocr"
	"github.com/katyLiminche/pdf-parser-app/quality"
)

const (
	// DefaultPageTimeout bounds the wait for a single page's OCR call.
	// Expiry is a page failure, never a stall for the whole document.
	DefaultPageTimeout = 30 * time.Second

	// DefaultConcurrency limits how many pages are recognized at once.
	DefaultConcurrency = 4

	// nearEmptyRunes is the trimmed length at or below which a page's
	// primary text is considered effectively empty when merging.
	nearEmptyRunes = 10
)

// Options carries the OCR-relevant slice of the extraction configuration.
type Options struct {
	// UseOCR enables OCR at all. Without it Enhance never runs the engine.
	UseOCR bool
	// EnableFallback allows the automatic quality-driven trigger. When
	// false, only ForcedPages are recognized.
	EnableFallback bool
	// Languages are the configured OCR language codes.
	Languages []string
	// ConfidenceThreshold is the minimum per-token confidence for a token
	// to be merged. Tokens below it are dropped.
	ConfidenceThreshold float64
	// MinTextLength is the per-page sufficiency threshold, shared with the
	// quality scorer.
	MinTextLength int
	// ForcedPages are zero-based page indices to OCR regardless of the
	// automatic trigger decision.
	ForcedPages []int
	// PageTimeout bounds each page's OCR call; zero means
	// DefaultPageTimeout.
	PageTimeout time.Duration
}

// PageError is a recoverable, single-page OCR failure. It is recorded in
// OCRInfo.FailedPages rather than surfaced as a returned error.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("ocr failed for page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// ImageChecker is an optional Rasterizer refinement. A rasterizer that can
// tell up front whether a page carries any images lets the coordinator skip
// the engine call for imageless pages entirely.
type ImageChecker interface {
	HasImages(path string, pageIndex int) bool
}

// Coordinator owns the OCR engine handle and the per-page fan-out. The
// engine is passed in explicitly; the coordinator never reaches for process
// globals.
type Coordinator struct {
	engine      ocr.Engine
	raster      extract.Rasterizer
	scorer      *quality.Scorer
	log         *slog.Logger
	concurrency int
}

// NewCoordinator wires an OCR engine and a page rasterizer to a quality
// scorer. A nil logger falls back to slog.Default.
func NewCoordinator(engine ocr.Engine, raster extract.Rasterizer, scorer *quality.Scorer, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		engine:      engine,
		raster:      raster,
		scorer:      scorer,
		log:         log,
		concurrency: DefaultConcurrency,
	}
}

// SetConcurrency bounds how many pages are recognized at once. Values
// below 1 reset to the default.
func (c *Coordinator) SetConcurrency(n int) {
	if n < 1 {
		n = DefaultConcurrency
	}
	c.concurrency = n
}

// pageResult is the outcome of OCR on one page, reassembled by index so
// final text ordering never depends on engine latency.
type pageResult struct {
	text       string
	confidence float64 // sum over accepted tokens
	accepted   int
	err        error
}

// Enhance runs the OCR fallback over the document and returns a new
// document with merged text plus a summary of the pass. The input document
// is never modified. Enhance itself only fails on a nil engine or
// rasterizer misuse combined with pages to process; per-page failures are
// absorbed into OCRInfo.FailedPages.
func (c *Coordinator) Enhance(ctx context.Context, path string, doc *model.ExtractedDocument, opts Options) (*model.ExtractedDocument, model.OCRInfo, error) {
	info := model.OCRInfo{}

	pages := c.selectPages(doc, opts)
	if len(pages) == 0 {
		return doc, info, nil
	}

	info.Triggered = true
	info.PagesProcessed = pages
	c.log.Info("ocr fallback triggered", "path", path, "pages", len(pages))

	timeout := opts.PageTimeout
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}

	results := make([]pageResult, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, pageIndex := range pages {
		i, pageIndex := i, pageIndex
		g.Go(func() error {
			results[i] = c.recognizePage(gctx, path, pageIndex, opts, timeout)
			// Page failures stay local; returning an error here would
			// cancel sibling pages through the group context.
			return nil
		})
	}
	_ = g.Wait()

	newPages := append([]string(nil), doc.Pages...)
	totalAccepted := 0

	for i, pageIndex := range pages {
		res := results[i]
		if res.err != nil {
			c.log.Warn("ocr page failed", "path", path, "page", pageIndex, "error", res.err)
			info.FailedPages = append(info.FailedPages, pageIndex)
			continue
		}
		if res.accepted == 0 {
			continue
		}

		info.Additions++
		info.Records = append(info.Records, model.OCRAddition{
			PageIndex:  pageIndex,
			AddedText:  res.text,
			Confidence: res.confidence / float64(res.accepted),
		})
		info.AverageConfidence += res.confidence
		totalAccepted += res.accepted
		newPages[pageIndex] = mergePageText(doc.PageText(pageIndex), res.text)
	}

	if totalAccepted > 0 {
		info.AverageConfidence /= float64(totalAccepted)
	} else {
		info.AverageConfidence = 0
	}
	sort.Ints(info.FailedPages)

	return doc.WithPages(newPages), info, nil
}

// selectPages applies the trigger policy. The automatic fallback selects
// pages below the per-page threshold, but only when the document as a whole
// failed the sufficiency check. Forced pages are added whenever OCR is
// enabled at all, even with the automatic fallback off.
func (c *Coordinator) selectPages(doc *model.ExtractedDocument, opts Options) []int {
	if !opts.UseOCR {
		return nil
	}

	selected := map[int]bool{}

	if opts.EnableFallback && !c.scorer.AssessSufficiency(doc.Text(), doc.PageCount) {
		for i, pageText := range doc.Pages {
			if c.scorer.PageNeedsOCR(pageText) {
				selected[i] = true
			}
		}
	}

	for _, i := range opts.ForcedPages {
		if i >= 0 && i < len(doc.Pages) {
			selected[i] = true
		}
	}

	pages := make([]int, 0, len(selected))
	for i := range selected {
		pages = append(pages, i)
	}
	sort.Ints(pages)
	return pages
}

// recognizePage renders one page, runs the engine on it with a bounded
// wait, and filters tokens by confidence.
func (c *Coordinator) recognizePage(ctx context.Context, path string, pageIndex int, opts Options, timeout time.Duration) pageResult {
	if chk, ok := c.raster.(ImageChecker); ok && !chk.HasImages(path, pageIndex) {
		return pageResult{err: &PageError{Page: pageIndex, Err: extract.ErrNoPageImage}}
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	img, err := c.raster.RenderPage(pctx, path, pageIndex)
	if err != nil {
		return pageResult{err: &PageError{Page: pageIndex, Err: err}}
	}

	res, err := c.engine.Recognize(pctx, img, opts.Languages)
	if err != nil {
		return pageResult{err: &PageError{Page: pageIndex, Err: err}}
	}

	var sb strings.Builder
	var confSum float64
	accepted := 0
	for _, w := range res.Words {
		if w.Confidence < opts.ConfidenceThreshold {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
		confSum += w.Confidence
		accepted++
	}

	return pageResult{text: sb.String(), confidence: confSum, accepted: accepted}
}

// mergePageText combines primary text with accepted OCR text for one page.
// Primary text is never discarded: when it is near-empty the OCR text simply
// follows it, and when it carries real content the OCR text is appended
// after a blank line.
func mergePageText(primary, ocrText string) string {
	trimmed := strings.TrimSpace(primary)
	if len([]rune(trimmed)) <= nearEmptyRunes {
		if trimmed == "" {
			return ocrText
		}
		return trimmed + " " + ocrText
	}
	return primary + "\n\n" + ocrText
}
