//go:build !ocr

// Package ocr recognizes text in rasterized page images via the Tesseract
// engine.
//
// This is the stub compiled when the "ocr" build tag is not set: every
// recognition call returns ErrNotEnabled. Rebuild with
//
//	go build -tags ocr
//
// to link the real engine (requires a system Tesseract installation).
package ocr

import "context"

// Client performs OCR on single page images. In this build it is a stub.
type Client struct {
	Language string
}

// New creates an OCR client.
func New(language string) *Client {
	if language == "" {
		language = "eng"
	}
	return &Client{Language: language}
}

// Enabled reports whether a real OCR engine is compiled in.
func (c *Client) Enabled() bool { return false }

// Recognize always returns ErrNotEnabled in this build.
func (c *Client) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", ErrNotEnabled
}
