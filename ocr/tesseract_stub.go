//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrNotEnabled is returned when the Tesseract engine is requested but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the stub engine used when the ocr build tag is not set.
type Client struct{}

// New returns ErrNotEnabled. To enable OCR, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op for the stub client. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// Recognize returns ErrNotEnabled.
func (c *Client) Recognize(ctx context.Context, img []byte, languages []string) (Result, error) {
	return Result{}, ErrNotEnabled
}
