// Package model defines the data types shared across the extraction pipeline:
// extracted documents and tables, OCR pass summaries, document type scores,
// and validation reports.
//
// All types in this package are plain data with no I/O. An ExtractedDocument
// is never mutated after creation; enhancement steps produce a new document.
package model
