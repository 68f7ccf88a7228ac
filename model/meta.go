package model

import "time"

// Extraction methods reported in ExtractionMeta.Method.
const (
	MethodStandard = "standard"
	MethodHybrid   = "hybrid"
)

// ExtractionMeta bundles everything known about one extraction run:
// raw counts, the OCR pass summary, classification scores, the validation
// report, and timing.
type ExtractionMeta struct {
	PageCount   int
	TotalChars  int
	TablesFound int
	// Method is "standard" when primary extraction sufficed, "hybrid" when
	// OCR contributed text.
	Method       string
	OCR          OCRInfo
	DocumentType DocumentTypeScores
	Validation   ValidationReport
	Duration     time.Duration
	// Errors holds diagnostic strings for recoverable per-page problems.
	Errors []string
}
