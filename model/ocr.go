package model

// OCRAddition records text merged into one page from an OCR pass.
type OCRAddition struct {
	PageIndex  int
	AddedText  string
	Confidence float64
}

// OCRInfo summarizes a single OCR pass over a document.
//
// Invariant: Triggered == false implies Additions == 0.
type OCRInfo struct {
	// Additions counts pages where at least one token was accepted.
	// It always equals len(Records).
	Additions int
	// Records holds one OCRAddition per enhanced page, in page order.
	Records []OCRAddition
	// PagesProcessed lists the page indices sent to the OCR engine, sorted.
	PagesProcessed []int
	// FailedPages lists the page indices whose rasterization or recognition
	// failed, sorted. Those pages keep their primary text unchanged.
	FailedPages []int
	// AverageConfidence is the mean confidence over all accepted tokens
	// across all processed pages, or 0 when no tokens were accepted.
	AverageConfidence float64
	// Triggered reports whether OCR ran at all.
	Triggered bool
}
