// Package quality scores the sufficiency of extracted text and validates
// combined text and table output against quality thresholds.
//
// Every function here is a pure, deterministic function of its inputs: no
// I/O, no randomness. The same text and tables always yield the same report,
// which makes the OCR trigger decision testable in isolation.
package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// Threshold constants. These drive the OCR fallback decision and the
// validation weighting; they are exported so callers can reason about and
// tune the decision engine without digging for inline literals.
const (
	// DefaultMinTextLength is the per-page rune count below which primary
	// extraction is considered insufficient. It doubles as the expected
	// per-page length baseline during validation.
	DefaultMinTextLength = 100

	// TextWeight and TableWeight combine the component scores into
	// OverallQuality. Text is weighted higher: text failures are more
	// common and more diagnostic than table failures.
	TextWeight  = 0.6
	TableWeight = 0.4

	// LowTextScore is the text score below which validation flags a
	// document whose OCR fallback never fired.
	LowTextScore = 0.5

	// minAlphaRun is the shortest run of letters that counts as real text.
	// Guards against extraction output that is only whitespace or control
	// characters.
	minAlphaRun = 3
)

// Scorer assesses extraction quality against a configurable minimum
// per-page text length. The zero value is not usable; use NewScorer.
type Scorer struct {
	minTextLength int
}

// NewScorer returns a Scorer with the given per-page minimum text length.
// Values below 1 fall back to DefaultMinTextLength.
func NewScorer(minTextLength int) *Scorer {
	if minTextLength < 1 {
		minTextLength = DefaultMinTextLength
	}
	return &Scorer{minTextLength: minTextLength}
}

// MinTextLength returns the configured per-page minimum.
func (s *Scorer) MinTextLength() int {
	return s.minTextLength
}

// AssessSufficiency reports whether primary extraction is adequate, meaning
// no OCR is needed. Text is adequate when the average page carries at least
// the minimum rune count and the text contains at least one alphabetic run
// of three or more letters.
//
// The result is monotonic in the text length: growing the text while holding
// the page count fixed never flips an adequate result to inadequate.
func (s *Scorer) AssessSufficiency(text string, pageCount int) bool {
	if pageCount < 1 {
		pageCount = 1
	}
	trimmed := strings.TrimSpace(text)
	perPage := len([]rune(trimmed)) / pageCount
	return perPage >= s.minTextLength && hasAlphaRun(trimmed, minAlphaRun)
}

// PageNeedsOCR reports whether a single page's text falls below the minimum
// and should be sent to OCR in hybrid mode.
func (s *Scorer) PageNeedsOCR(pageText string) bool {
	return len([]rune(strings.TrimSpace(pageText))) < s.minTextLength
}

// Validate scores the combined text and table output and collects
// human-readable diagnostics. ocrTriggered tells the scorer whether an OCR
// pass already ran, so it can flag low-quality text for which OCR never
// fired.
func (s *Scorer) Validate(text string, tables []model.Table, pageCount int, ocrTriggered bool) model.ValidationReport {
	if pageCount < 1 {
		pageCount = 1
	}

	trimmed := strings.TrimSpace(text)
	baseline := s.minTextLength * pageCount
	textScore := clamp(float64(len([]rune(trimmed)))/float64(baseline), 0, 1)

	tableScore := 1.0
	ragged := 0
	if len(tables) > 0 {
		wellFormed := 0
		for i := range tables {
			if tables[i].IsWellFormed() {
				wellFormed++
			} else {
				ragged++
			}
		}
		tableScore = float64(wellFormed) / float64(len(tables))
	}

	report := model.ValidationReport{
		TextScore:      textScore,
		TableScore:     tableScore,
		OverallQuality: TextWeight*textScore + TableWeight*tableScore,
	}

	if textScore < 1 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("text too short: %d chars across %d pages, expected at least %d", len([]rune(trimmed)), pageCount, baseline))
	}
	if ragged > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%d of %d tables are ragged (rows with differing column counts)", ragged, len(tables)))
	}
	if len(tables) == 0 && LikelyHasTables(trimmed) {
		report.Issues = append(report.Issues,
			"no tables found, but the text looks tabular (numeric grid alignment)")
	}
	if !ocrTriggered && textScore < LowTextScore {
		report.Issues = append(report.Issues,
			"text quality is low and OCR never triggered")
	}

	return report
}

// hasAlphaRun reports whether text contains a run of at least n consecutive
// letters. Unicode letters count, so Cyrillic text passes.
func hasAlphaRun(text string, n int) bool {
	run := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// currencyLineRe matches lines carrying currency or decimal amounts, the
// sort of content that usually lives in a table.
var currencyLineRe = regexp.MustCompile(`[$€₽£]\s*\d|\d+[.,]\d{2}\b`)

// gridGapRe matches runs of two or more spaces, a hint of column alignment.
var gridGapRe = regexp.MustCompile(`\S {2,}\S`)

// LikelyHasTables applies a cheap heuristic for whether the document text
// suggests tabular content: several lines with currency or decimal amounts
// and at least a couple of lines with grid-like whitespace gaps.
func LikelyHasTables(text string) bool {
	amountLines := 0
	gapLines := 0
	for _, line := range strings.Split(text, "\n") {
		if currencyLineRe.MatchString(line) {
			amountLines++
		}
		if gridGapRe.MatchString(line) {
			gapLines++
		}
	}
	return amountLines >= 3 && gapLines >= 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
