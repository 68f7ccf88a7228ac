package pdfparser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/katyLiminche/pdf-parser-app/classify"
	"github.com/katyLiminche/pdf-parser-app/enhance"
	"github.com/katyLiminche/pdf-parser-app/extract"
	"github.com/katyLiminche/pdf-parser-app/model"
	"github.com/katyLiminche/pdf-parser-app/ocr"
	"github.com/katyLiminche/pdf-parser-app/quality"
)

// Extractor orchestrates the full pipeline: primary extraction, the OCR
// fallback decision, classification, and validation. Each configuration
// method returns a new Extractor instance, making configured extractors
// safe to share and allowing method chaining.
type Extractor struct {
	path   string
	config ExtractionConfig

	// Collaborators; nil fields get defaults in Extract.
	primary extract.Extractor
	raster  extract.Rasterizer
	engine  ocr.Engine
	logger  *slog.Logger

	// Accumulated configuration error (fail-fast).
	err error
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Text is the final document text, OCR-merged when the fallback ran.
	Text string
	// Pages holds the final per-page texts.
	Pages []string
	// Tables holds the primary-extracted tables. Tables are not
	// OCR-enhanced.
	Tables []model.Table
	// Meta bundles counts, the OCR summary, classification scores, the
	// validation report, and timing.
	Meta *model.ExtractionMeta

	stages *tracker
}

func (e *Extractor) clone() *Extractor {
	return &Extractor{
		path:    e.path,
		config:  e.config.clone(),
		primary: e.primary,
		raster:  e.raster,
		engine:  e.engine,
		logger:  e.logger,
		err:     e.err,
	}
}

// WithConfig replaces the whole configuration.
func (e *Extractor) WithConfig(config ExtractionConfig) *Extractor {
	out := e.clone()
	out.config = config.clone()
	return out
}

// WithOCR enables OCR with the given language codes (e.g. "en", "ru").
// No languages means keep the current ones.
func (e *Extractor) WithOCR(languages ...string) *Extractor {
	out := e.clone()
	out.config.UseOCR = true
	if len(languages) > 0 {
		out.config.OCRLanguages = append([]string(nil), languages...)
	}
	return out
}

// WithoutOCR disables OCR entirely.
func (e *Extractor) WithoutOCR() *Extractor {
	out := e.clone()
	out.config.UseOCR = false
	return out
}

// ConfidenceThreshold sets the minimum per-token OCR confidence in [0, 1].
func (e *Extractor) ConfidenceThreshold(v float64) *Extractor {
	out := e.clone()
	out.config.ConfidenceThreshold = v
	return out
}

// MinTextLength sets the per-page rune count under which primary
// extraction is considered insufficient.
func (e *Extractor) MinTextLength(n int) *Extractor {
	out := e.clone()
	out.config.MinTextLengthTrigger = n
	return out
}

// DisableFallback turns the automatic quality-driven OCR trigger off while
// leaving forced pages available.
func (e *Extractor) DisableFallback() *Extractor {
	out := e.clone()
	out.config.EnableOCRFallback = false
	return out
}

// ForceOCRPages marks zero-based page indices that are always sent to OCR
// when OCR is enabled, regardless of the automatic trigger decision.
func (e *Extractor) ForceOCRPages(pages ...int) *Extractor {
	out := e.clone()
	out.config.ForcedPages = append(out.config.ForcedPages, pages...)
	return out
}

// WithEngine supplies an OCR engine explicitly. Without it, the Tesseract
// engine is acquired lazily on the first run that needs OCR.
func (e *Extractor) WithEngine(engine ocr.Engine) *Extractor {
	out := e.clone()
	out.engine = engine
	return out
}

// WithPrimaryExtractor replaces the primary extraction backend. The
// default is the pdfcpu-backed PDFExtractor.
func (e *Extractor) WithPrimaryExtractor(p extract.Extractor) *Extractor {
	out := e.clone()
	out.primary = p
	return out
}

// WithRasterizer replaces the page image source used by the OCR fallback.
func (e *Extractor) WithRasterizer(r extract.Rasterizer) *Extractor {
	out := e.clone()
	out.raster = r
	return out
}

// WithLogger sets the logger. nil means slog.Default.
func (e *Extractor) WithLogger(logger *slog.Logger) *Extractor {
	out := e.clone()
	out.logger = logger
	return out
}

// Extract runs the pipeline: primary extraction, the OCR fallback when the
// quality check calls for it, classification, and validation. For a
// readable file it always returns a best-effort result; per-page OCR
// problems degrade the result and surface in Meta rather than failing the
// run.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	primary := e.primary
	if primary == nil {
		primary = extract.NewPDFExtractor()
	}
	raster := e.raster
	if raster == nil {
		if r, ok := primary.(extract.Rasterizer); ok {
			raster = r
		} else {
			raster = extract.NewPDFExtractor()
		}
	}

	start := time.Now()
	states := newTracker()

	doc, err := primary.Extract(ctx, e.path)
	if err != nil {
		return nil, err
	}

	scorer := quality.NewScorer(e.config.MinTextLengthTrigger)
	meta := &model.ExtractionMeta{
		PageCount: doc.PageCount,
		Method:    model.MethodStandard,
	}

	config := e.config
	engine, ownsEngine := e.engine, false
	if config.UseOCR && engine == nil {
		client, err := ocr.New()
		if err != nil {
			// No Tesseract available: degrade to primary-only, the way
			// a missing engine must never fail a readable file.
			logger.Warn("ocr engine unavailable, continuing without OCR",
				"path", e.path, "error", err)
			meta.Errors = append(meta.Errors, "ocr engine unavailable: "+err.Error())
			config.UseOCR = false
		} else {
			engine, ownsEngine = client, true
		}
	}
	if ownsEngine {
		defer func() {
			if closer, ok := engine.(io.Closer); ok {
				closer.Close()
			}
		}()
	}

	sufficient := scorer.AssessSufficiency(doc.Text(), doc.PageCount)
	if sufficient {
		states.advance(stageQualitySufficient)
	} else {
		states.advance(stageQualityInsufficient)
	}

	if config.UseOCR && engine != nil {
		coordinator := enhance.NewCoordinator(engine, raster, scorer, logger)
		enhanced, info, err := coordinator.Enhance(ctx, e.path, doc, enhance.Options{
			UseOCR:              config.UseOCR,
			EnableFallback:      config.EnableOCRFallback,
			Languages:           config.OCRLanguages,
			ConfidenceThreshold: config.ConfidenceThreshold,
			MinTextLength:       config.MinTextLengthTrigger,
			ForcedPages:         config.ForcedPages,
			PageTimeout:         config.PageTimeout,
		})
		if err != nil {
			return nil, err
		}
		meta.OCR = info
		if info.Triggered {
			states.advance(stageOCREnhanced)
			doc = enhanced
			if info.Additions > 0 {
				meta.Method = model.MethodHybrid
			}
			for _, page := range info.FailedPages {
				meta.Errors = append(meta.Errors, fmt.Sprintf("ocr failed for page %d", page))
			}
		}
	}

	text := doc.Text()
	meta.TotalChars = doc.TotalChars()
	meta.TablesFound = len(doc.Tables)

	meta.DocumentType = classify.New().Classify(text)
	states.advance(stageClassified)

	meta.Validation = scorer.Validate(text, doc.Tables, doc.PageCount, meta.OCR.Triggered)
	states.advance(stageValidated)

	meta.Duration = time.Since(start)
	states.advance(stageDone)

	logger.Info("extraction finished",
		"path", e.path,
		"pages", meta.PageCount,
		"chars", meta.TotalChars,
		"tables", meta.TablesFound,
		"method", meta.Method,
		"quality", meta.Validation.OverallQuality,
	)

	return &Result{
		Text:   text,
		Pages:  doc.Pages,
		Tables: doc.Tables,
		Meta:   meta,
		stages: states,
	}, nil
}
