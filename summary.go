package pdfparser

import (
	"fmt"
	"strings"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// Summary renders an ExtractionMeta as a short human-readable report.
// The output is deterministic: the same meta always yields the same string.
func Summary(meta *model.ExtractionMeta) string {
	if meta == nil {
		return "no extraction metadata"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extraction summary\n")
	fmt.Fprintf(&b, "  pages:       %d\n", meta.PageCount)
	fmt.Fprintf(&b, "  characters:  %d\n", meta.TotalChars)
	fmt.Fprintf(&b, "  tables:      %d\n", meta.TablesFound)
	fmt.Fprintf(&b, "  method:      %s\n", meta.Method)

	if meta.OCR.Triggered {
		fmt.Fprintf(&b, "  ocr:         %d page(s) processed, %d enhanced, avg confidence %.2f\n",
			len(meta.OCR.PagesProcessed), meta.OCR.Additions, meta.OCR.AverageConfidence)
		if len(meta.OCR.FailedPages) > 0 {
			fmt.Fprintf(&b, "  ocr failed:  pages %s\n", joinPages(meta.OCR.FailedPages))
		}
	} else {
		fmt.Fprintf(&b, "  ocr:         not triggered\n")
	}

	label, score := meta.DocumentType.Best()
	if label != "" {
		fmt.Fprintf(&b, "  type:        %s (%.2f)\n", label, score)
	}

	fmt.Fprintf(&b, "  quality:     %.2f (text %.2f, tables %.2f)\n",
		meta.Validation.OverallQuality, meta.Validation.TextScore, meta.Validation.TableScore)
	for _, issue := range meta.Validation.Issues {
		fmt.Fprintf(&b, "  issue:       %s\n", issue)
	}

	if meta.Duration > 0 {
		fmt.Fprintf(&b, "  duration:    %s\n", meta.Duration)
	}
	return b.String()
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}
