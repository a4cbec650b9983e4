package convert

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pressops/docsmith/acquire"
)

// ImagesToPDF builds a PDF with one page per input image, in input order.
func ImagesToPDF(images []string, out string) error {
	if len(images) == 0 {
		return fmt.Errorf("convert: no images to import")
	}
	if err := api.ImportImagesFile(images, out, nil, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("convert: import images: %w", err)
	}
	return nil
}

// ZipPages writes rasterized pages into a zip archive, one entry per page
// named page_<n>.<ext> after the page's own index.
func ZipPages(w io.Writer, pages []acquire.PageImage, ext string) error {
	zw := zip.NewWriter(w)
	for _, p := range pages {
		f, err := zw.Create(fmt.Sprintf("page_%d.%s", p.Page, ext))
		if err != nil {
			return fmt.Errorf("convert: zip entry: %w", err)
		}
		if _, err := f.Write(p.Data); err != nil {
			return fmt.Errorf("convert: zip write: %w", err)
		}
	}
	return zw.Close()
}
