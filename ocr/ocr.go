// Package ocr defines the OCR engine contract used by the extraction
// pipeline and provides a Tesseract-backed implementation via gosseract.
//
// The Tesseract implementation requires the ocr build tag and a system
// Tesseract installation. On macOS:
//
//	brew install tesseract tesseract-lang
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-rus
//
// Without the tag, New returns ErrNotEnabled and callers degrade gracefully.
package ocr

import (
	"context"
	"image"
)

// Word is a single recognized token with its confidence in [0, 1] and its
// bounding box in image pixel coordinates.
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Result is the output of recognizing one image. Words are in reading order
// as returned by the engine.
type Result struct {
	PlainText string
	Words     []Word
}

// Engine recognizes text in an encoded image (PNG, JPEG, TIFF). Languages
// are the caller's configured language codes (e.g. "en", "ru"); engines map
// them to their own trained-data names. Implementations must be safe for
// concurrent use: the coordinator may recognize several pages at once.
type Engine interface {
	Recognize(ctx context.Context, img []byte, languages []string) (Result, error)
}

// tessLangs maps common two-letter language codes to Tesseract trained-data
// names. Unknown codes pass through unchanged so callers can use Tesseract
// names directly.
var tessLangs = map[string]string{
	"en": "eng",
	"ru": "rus",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"uk": "ukr",
}

// TesseractLanguages converts configured language codes to the names
// Tesseract expects. Empty input defaults to English.
func TesseractLanguages(codes []string) []string {
	if len(codes) == 0 {
		return []string{"eng"}
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if mapped, ok := tessLangs[c]; ok {
			out = append(out, mapped)
			continue
		}
		out = append(out, c)
	}
	return out
}
