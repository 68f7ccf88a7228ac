package model

import "strings"

// ExtractedDocument is the immutable result of one extraction pass over a PDF.
// Pages holds the text of each page in order; Tables holds every table found,
// in reading order. PageCount may exceed len(Pages) when trailing pages were
// empty, but is never smaller.
type ExtractedDocument struct {
	Pages     []string
	Tables    []Table
	PageCount int
}

// NewDocument creates a document from per-page texts and tables.
// PageCount defaults to len(pages).
func NewDocument(pages []string, tables []Table) *ExtractedDocument {
	return &ExtractedDocument{
		Pages:     append([]string(nil), pages...),
		Tables:    append([]Table(nil), tables...),
		PageCount: len(pages),
	}
}

// Text returns the full document text with pages joined by blank lines.
func (d *ExtractedDocument) Text() string {
	return strings.Join(d.Pages, "\n\n")
}

// PageText returns the text of page i, or "" when i is out of range.
func (d *ExtractedDocument) PageText(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i]
}

// TotalChars returns the rune count across all pages.
func (d *ExtractedDocument) TotalChars() int {
	n := 0
	for _, p := range d.Pages {
		n += len([]rune(p))
	}
	return n
}

// WithPages returns a copy of the document with the given page texts.
// Tables and PageCount carry over unchanged.
func (d *ExtractedDocument) WithPages(pages []string) *ExtractedDocument {
	return &ExtractedDocument{
		Pages:     append([]string(nil), pages...),
		Tables:    d.Tables,
		PageCount: d.PageCount,
	}
}
