package enhance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/katyLiminche/pdf-parser-app/model"
	"github.com/katyLiminche/pdf-parser-app/ocr"
	"github.com/katyLiminche/pdf-parser-app/quality"
)

// fakeRaster returns a synthetic payload naming the page, or an error for
// pages in fail.
type fakeRaster struct {
	fail map[int]bool
}

func (f *fakeRaster) RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error) {
	if f.fail[pageIndex] {
		return nil, errors.New("render failed")
	}
	return []byte(fmt.Sprintf("page-%d", pageIndex)), nil
}

// fakeEngine maps page payloads to canned words. Optional latency per page
// simulates out-of-order completion; failPages simulates engine errors.
type fakeEngine struct {
	words     map[string][]ocr.Word
	latency   map[string]time.Duration
	failPages map[string]bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeEngine) Recognize(ctx context.Context, img []byte, languages []string) (ocr.Result, error) {
	key := string(img)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if d := f.latency[key]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ocr.Result{}, ctx.Err()
		}
	}
	if f.failPages[key] {
		return ocr.Result{}, errors.New("engine failed")
	}
	words := f.words[key]
	var sb strings.Builder
	for _, w := range words {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
	}
	return ocr.Result{PlainText: sb.String(), Words: words}, nil
}

func words(pairs ...any) []ocr.Word {
	var out []ocr.Word
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, ocr.Word{Text: pairs[i].(string), Confidence: pairs[i+1].(float64)})
	}
	return out
}

func defaultOpts() Options {
	return Options{
		UseOCR:              true,
		EnableFallback:      true,
		Languages:           []string{"en"},
		ConfidenceThreshold: 0.5,
		MinTextLength:       100,
	}
}

func newTestCoordinator(engine ocr.Engine, raster *fakeRaster) *Coordinator {
	return NewCoordinator(engine, raster, quality.NewScorer(100), nil)
}

func TestEnhanceSkipsSufficientDocument(t *testing.T) {
	engine := &fakeEngine{}
	c := newTestCoordinator(engine, &fakeRaster{})

	pages := []string{
		strings.Repeat("plenty of text here ", 10),
		strings.Repeat("and on this page too ", 10),
	}
	doc := model.NewDocument(pages, nil)

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if info.Triggered {
		t.Error("OCR should not trigger for sufficient text")
	}
	if info.Additions != 0 {
		t.Errorf("Additions = %d, want 0", info.Additions)
	}
	if !reflect.DeepEqual(out.Pages, doc.Pages) {
		t.Error("pages changed despite OCR not triggering")
	}
	if len(engine.calls) != 0 {
		t.Errorf("engine called %d times, want 0", len(engine.calls))
	}
}

// Two empty pages, threshold 0.5: page 0 returns tokens at 0.9 and 0.4,
// page 1 a single token at 0.6. Both pages gain text, the 0.4 token is
// dropped, and the mean confidence covers the two accepted tokens per page.
func TestEnhanceTwoPageScenario(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("invoice", 0.9, "smudge", 0.4),
			"page-1": words("total", 0.6),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	doc := model.NewDocument([]string{"", ""}, nil)
	out, info, err := c.Enhance(context.Background(), "scan.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	if !info.Triggered {
		t.Fatal("OCR should trigger for empty text")
	}
	if info.Additions != 2 {
		t.Errorf("Additions = %d, want 2", info.Additions)
	}
	if !reflect.DeepEqual(info.PagesProcessed, []int{0, 1}) {
		t.Errorf("PagesProcessed = %v, want [0 1]", info.PagesProcessed)
	}
	if out.Pages[0] != "invoice" {
		t.Errorf("page 0 = %q, want %q (0.4-confidence token dropped)", out.Pages[0], "invoice")
	}
	if out.Pages[1] != "total" {
		t.Errorf("page 1 = %q, want %q", out.Pages[1], "total")
	}
	if want := (0.9 + 0.6) / 2; math.Abs(info.AverageConfidence-want) > 1e-12 {
		t.Errorf("AverageConfidence = %v, want %v", info.AverageConfidence, want)
	}
}

func TestEnhanceConfidenceFiltering(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("keep", 0.8, "drop", 0.2, "borderline", 0.5),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	doc := model.NewDocument([]string{""}, nil)
	out, _, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	if strings.Contains(out.Pages[0], "drop") {
		t.Errorf("below-threshold token leaked into output: %q", out.Pages[0])
	}
	for _, want := range []string{"keep", "borderline"} {
		if !strings.Contains(out.Pages[0], want) {
			t.Errorf("missing accepted token %q in %q", want, out.Pages[0])
		}
	}
}

func TestEnhanceAllTokensRejected(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("noise", 0.1),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	doc := model.NewDocument([]string{""}, nil)
	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if info.Additions != 0 {
		t.Errorf("Additions = %d, want 0 when every token is rejected", info.Additions)
	}
	if info.AverageConfidence != 0 {
		t.Errorf("AverageConfidence = %v, want 0", info.AverageConfidence)
	}
	if out.Pages[0] != "" {
		t.Errorf("page 0 = %q, want unchanged empty page", out.Pages[0])
	}
	if !info.Triggered {
		t.Error("Triggered should remain true: OCR did run")
	}
}

// A failing page must not disturb its siblings: the other pages' output is
// identical to a run where only the failing page was skipped.
func TestEnhancePageFailureIsolation(t *testing.T) {
	wordTable := map[string][]ocr.Word{
		"page-0": words("alpha", 0.9),
		"page-1": words("beta", 0.9),
		"page-2": words("gamma", 0.9),
	}

	failing := &fakeEngine{words: wordTable, failPages: map[string]bool{"page-1": true}}
	c := newTestCoordinator(failing, &fakeRaster{})
	doc := model.NewDocument([]string{"", "", ""}, nil)

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	if !reflect.DeepEqual(info.FailedPages, []int{1}) {
		t.Errorf("FailedPages = %v, want [1]", info.FailedPages)
	}
	if out.Pages[0] != "alpha" || out.Pages[2] != "gamma" {
		t.Errorf("sibling pages disturbed: %v", out.Pages)
	}
	if out.Pages[1] != "" {
		t.Errorf("failed page should keep primary text, got %q", out.Pages[1])
	}
	if info.Additions != 2 {
		t.Errorf("Additions = %d, want 2", info.Additions)
	}
}

func TestEnhanceRasterFailureIsolation(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("alpha", 0.9),
			"page-2": words("gamma", 0.9),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{fail: map[int]bool{1: true}})

	doc := model.NewDocument([]string{"", "", ""}, nil)
	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if !reflect.DeepEqual(info.FailedPages, []int{1}) {
		t.Errorf("FailedPages = %v, want [1]", info.FailedPages)
	}
	if out.Pages[0] != "alpha" || out.Pages[2] != "gamma" {
		t.Errorf("sibling pages disturbed: %v", out.Pages)
	}
}

// Re-running enhancement on text that already meets the threshold on every
// page must return the input unchanged with Triggered == false.
func TestEnhanceIdempotentOnGoodText(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{"page-0": words("noise", 0.9)},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	good := strings.Repeat("solid extracted text ", 10)
	doc := model.NewDocument([]string{good, good}, nil)

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if info.Triggered {
		t.Error("Triggered = true, want false")
	}
	if !reflect.DeepEqual(out.Pages, doc.Pages) {
		t.Error("pages changed on re-run")
	}
}

// Only pages below the per-page threshold go to OCR; well-extracted pages
// are skipped even when the document as a whole is insufficient.
func TestEnhanceHybridPageSelection(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-1": words("recovered", 0.9),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	good := strings.Repeat("well extracted page text ", 10)
	doc := model.NewDocument([]string{good, ""}, nil)

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if !reflect.DeepEqual(info.PagesProcessed, []int{1}) {
		t.Errorf("PagesProcessed = %v, want [1]", info.PagesProcessed)
	}
	if out.Pages[0] != good {
		t.Error("well-extracted page was modified")
	}
	if out.Pages[1] != "recovered" {
		t.Errorf("page 1 = %q, want %q", out.Pages[1], "recovered")
	}
}

func TestEnhanceAppendsToShortPrimaryText(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("ocr", 0.9, "text", 0.9),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	primary := "Short primary line that still matters here"
	doc := model.NewDocument([]string{primary}, nil)

	out, _, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if !strings.HasPrefix(out.Pages[0], primary) {
		t.Errorf("primary text discarded: %q", out.Pages[0])
	}
	if !strings.Contains(out.Pages[0], "ocr text") {
		t.Errorf("OCR text missing: %q", out.Pages[0])
	}
	if !strings.Contains(out.Pages[0], "\n\n") {
		t.Errorf("expected separator between primary and OCR text: %q", out.Pages[0])
	}
}

func TestEnhanceForcedPagesWithFallbackDisabled(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-1": words("forced", 0.9),
		},
	}
	c := newTestCoordinator(engine, &fakeRaster{})

	good := strings.Repeat("good text on this page ", 10)
	doc := model.NewDocument([]string{good, good}, nil)

	opts := defaultOpts()
	opts.EnableFallback = false
	opts.ForcedPages = []int{1}

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, opts)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if !reflect.DeepEqual(info.PagesProcessed, []int{1}) {
		t.Errorf("PagesProcessed = %v, want [1]", info.PagesProcessed)
	}
	if !strings.Contains(out.Pages[1], "forced") {
		t.Errorf("forced page not enhanced: %q", out.Pages[1])
	}
}

func TestEnhanceDisabledOCR(t *testing.T) {
	engine := &fakeEngine{}
	c := newTestCoordinator(engine, &fakeRaster{})
	doc := model.NewDocument([]string{""}, nil)

	opts := defaultOpts()
	opts.UseOCR = false
	opts.ForcedPages = []int{0}

	_, info, err := c.Enhance(context.Background(), "a.pdf", doc, opts)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if info.Triggered {
		t.Error("OCR ran with UseOCR disabled")
	}
}

// Pages are reassembled by index, not completion order: random per-page
// latencies must not change the output.
func TestEnhanceDeterministicReassembly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 8

	pages := make([]string, n)
	wordTable := map[string][]ocr.Word{}
	latency := map[string]time.Duration{}
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("page-%d", i)
		wordTable[key] = words(fmt.Sprintf("content%d", i), 0.9)
		latency[key] = time.Duration(rng.Intn(30)) * time.Millisecond
	}

	c := newTestCoordinator(&fakeEngine{words: wordTable, latency: latency}, &fakeRaster{})
	doc := model.NewDocument(pages, nil)

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if info.Additions != n {
		t.Fatalf("Additions = %d, want %d", info.Additions, n)
	}
	for i := 0; i < n; i++ {
		want := fmt.Sprintf("content%d", i)
		if out.Pages[i] != want {
			t.Errorf("page %d = %q, want %q", i, out.Pages[i], want)
		}
	}
}

func TestEnhancePageTimeout(t *testing.T) {
	engine := &fakeEngine{
		words: map[string][]ocr.Word{
			"page-0": words("slow", 0.9),
			"page-1": words("fast", 0.9),
		},
		latency: map[string]time.Duration{"page-0": 500 * time.Millisecond},
	}
	c := newTestCoordinator(engine, &fakeRaster{})
	doc := model.NewDocument([]string{"", ""}, nil)

	opts := defaultOpts()
	opts.PageTimeout = 50 * time.Millisecond

	out, info, err := c.Enhance(context.Background(), "a.pdf", doc, opts)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if !reflect.DeepEqual(info.FailedPages, []int{0}) {
		t.Errorf("FailedPages = %v, want [0] (timeout)", info.FailedPages)
	}
	if out.Pages[1] != "fast" {
		t.Errorf("fast page = %q, want %q", out.Pages[1], "fast")
	}
}

func TestPageErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &PageError{Page: 3, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("PageError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "page 3") {
		t.Errorf("PageError message missing page index: %v", err)
	}
}

func TestMergePageText(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		ocrText string
		want    string
	}{
		{"empty primary", "", "from ocr", "from ocr"},
		{"whitespace primary", "   \n ", "from ocr", "from ocr"},
		{"near-empty primary keeps fragment", "№42", "from ocr", "№42 from ocr"},
		{"real primary gets separator", "A full primary paragraph of text.", "from ocr",
			"A full primary paragraph of text.\n\nfrom ocr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergePageText(tt.primary, tt.ocrText); got != tt.want {
				t.Errorf("mergePageText(%q, %q) = %q, want %q", tt.primary, tt.ocrText, got, tt.want)
			}
		})
	}
}

// checkedRaster reports page 0-style image presence and records which pages
// it was asked to render.
type checkedRaster struct {
	noImages map[int]bool

	mu       sync.Mutex
	rendered []int
}

func (c *checkedRaster) HasImages(path string, pageIndex int) bool {
	return !c.noImages[pageIndex]
}

func (c *checkedRaster) RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error) {
	c.mu.Lock()
	c.rendered = append(c.rendered, pageIndex)
	c.mu.Unlock()
	return []byte(fmt.Sprintf("page-%d", pageIndex)), nil
}

func TestEnhanceSkipsImagelessPages(t *testing.T) {
	doc := model.NewDocument([]string{"", ""}, nil)
	engine := &fakeEngine{words: map[string][]ocr.Word{
		"page-1": words("rescued", 0.9),
	}}
	raster := &checkedRaster{noImages: map[int]bool{0: true}}
	c := NewCoordinator(engine, raster, quality.NewScorer(100), nil)

	out, info, err := c.Enhance(context.Background(), "doc.pdf", doc, defaultOpts())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	if !reflect.DeepEqual(info.FailedPages, []int{0}) {
		t.Errorf("FailedPages = %v, want [0]", info.FailedPages)
	}
	for _, p := range raster.rendered {
		if p == 0 {
			t.Error("RenderPage called for a page known to carry no images")
		}
	}
	if len(engine.calls) != 1 || engine.calls[0] != "page-1" {
		t.Errorf("engine calls = %v, want only page-1", engine.calls)
	}
	if info.Additions != 1 {
		t.Errorf("Additions = %d, want 1", info.Additions)
	}
	if out.PageText(1) != "rescued" {
		t.Errorf("page 1 = %q, want %q", out.PageText(1), "rescued")
	}
}
