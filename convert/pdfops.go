// CLAUDE:SUMMARY pdfcpu call-throughs: merge, split, rotate, encrypt, decrypt, page count.
// Package convert wraps the external converters the service calls through
// to: pdfcpu for PDF structural operations, LibreOffice for office-document
// rendering, Ghostscript for compression, and poppler for page imaging.
// None of these carry original logic — errors are surfaced, never retried.
package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrBadAngle marks a rotation angle that is not a multiple of 90.
var ErrBadAngle = errors.New("convert: rotation must be a multiple of 90")

// Merge concatenates the input PDFs into one, in the given order.
func Merge(inputs []string, out string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("convert: no input files to merge")
	}
	if err := api.MergeCreateFile(inputs, out, false, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("convert: merge: %w", err)
	}
	return nil
}

// SplitPages writes one single-page PDF per requested page into outDir,
// named page_<n>.pdf, and returns the written paths in page order.
func SplitPages(in string, pages []int, outDir string) ([]string, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("convert: no pages selected")
	}
	conf := model.NewDefaultConfiguration()
	var written []string
	for _, p := range pages {
		out := filepath.Join(outDir, fmt.Sprintf("page_%d.pdf", p))
		if err := api.TrimFile(in, out, []string{strconv.Itoa(p)}, conf); err != nil {
			return nil, fmt.Errorf("convert: split page %d: %w", p, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// Rotate turns every page by angle degrees (multiples of 90).
func Rotate(in, out string, angle int) error {
	if angle%90 != 0 {
		return fmt.Errorf("%w, got %d", ErrBadAngle, angle)
	}
	if err := api.RotateFile(in, out, angle, nil, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("convert: rotate: %w", err)
	}
	return nil
}

// Encrypt password-protects a PDF. The same password is applied as user
// and owner password.
func Encrypt(in, out, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.EncryptFile(in, out, conf); err != nil {
		return fmt.Errorf("convert: encrypt: %w", err)
	}
	return nil
}

// Decrypt removes password protection from a PDF.
func Decrypt(in, out, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.DecryptFile(in, out, conf); err != nil {
		return fmt.Errorf("convert: decrypt: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(in string) (int, error) {
	n, err := api.PageCountFile(in)
	if err != nil {
		return 0, fmt.Errorf("convert: page count: %w", err)
	}
	return n, nil
}
