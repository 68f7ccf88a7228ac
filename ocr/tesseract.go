//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client is a Tesseract-backed Engine. Each Recognize call uses its own
// gosseract client, so a single Client is safe for concurrent use across
// pages.
type Client struct {
	newClient func() *gosseract.Client
}

// New creates a Tesseract-backed OCR engine.
func New() (*Client, error) {
	return &Client{newClient: gosseract.NewClient}, nil
}

// Close releases OCR resources. The Tesseract client holds nothing between
// calls, so this is a no-op kept for interface symmetry with other engines.
func (c *Client) Close() error {
	return nil
}

// Recognize runs Tesseract over the image and returns the recognized text
// along with word-level confidences and bounding boxes.
func (c *Client) Recognize(ctx context.Context, img []byte, languages []string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	prepared, err := Preprocess(img)
	if err != nil {
		// Fall back to the raw image; Tesseract may still cope.
		prepared = img
	}

	tc := c.newClient()
	defer tc.Close()

	if err := tc.SetImageFromBytes(prepared); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if err := tc.SetLanguage(TesseractLanguages(languages)...); err != nil {
		return Result{}, fmt.Errorf("set languages: %w", err)
	}

	text, err := tc.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	res := Result{PlainText: strings.TrimSpace(text)}

	boxes, err := tc.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("word boxes: %w", err)
	}
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		res.Words = append(res.Words, Word{
			Text:       word,
			Confidence: b.Confidence / 100.0,
			Box:        b.Box,
		})
	}

	return res, nil
}
