//go:build ocr

// Package ocr recognizes text in rasterized page images via the Tesseract
// engine (gosseract binding). Tesseract must be installed on the system;
// build with the "ocr" tag to enable this implementation:
//
//	go build -tags ocr
//
// Without the tag, a stub that returns ErrNotEnabled is compiled instead,
// keeping the default build CGO-free.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/draw"
)

// Client performs OCR on single page images. Each Recognize call runs an
// independent Tesseract session, so a Client is safe for concurrent use.
type Client struct {
	// Language is the Tesseract language spec, "+"-separated for multiple
	// (e.g. "eng+fra"). Default "eng".
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
func (c *Client) Enabled() bool { return true }

// Recognize converts the image to grayscale and runs Tesseract over it.
// The recognized text is returned with surrounding whitespace trimmed;
// an empty result is valid.
func (c *Client) Recognize(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	gray, err := grayscalePNG(data)
	if err != nil {
		return "", fmt.Errorf("ocr: prepare image: %w", err)
	}

	engine := gosseract.NewClient()
	defer engine.Close()

	if err := engine.SetLanguage(strings.Split(c.Language, "+")...); err != nil {
		return "", fmt.Errorf("ocr: set language: %w", err)
	}
	if err := engine.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("ocr: set psm: %w", err)
	}
	if err := engine.SetImageFromBytes(gray); err != nil {
		return "", fmt.Errorf("ocr: set image: %w", err)
	}

	text, err := engine.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// grayscalePNG decodes any supported image and re-encodes it as an 8-bit
// grayscale PNG, the input Tesseract handles best.
func grayscalePNG(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
