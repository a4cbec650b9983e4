// CLAUDE:SUMMARY Minimal .docx writer — renders reflowed blocks as OOXML paragraphs (bold headings, bullet lines).
package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pressops/docsmith/reflow"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

// WriteDocx writes the blocks as a minimal Word document: one paragraph
// per heading (bold run) or paragraph block, one paragraph per bullet line.
// The result opens in Word and LibreOffice; styling beyond bold headings is
// left to the consumer.
func WriteDocx(w io.Writer, f *reflow.Formatter, blocks []reflow.Block) error {
	zw := zip.NewWriter(w)

	entries := []struct{ name, body string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", docxDocumentXML(f, blocks)},
	}
	for _, e := range entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("convert: docx entry %s: %w", e.name, err)
		}
		if _, err := io.WriteString(fw, e.body); err != nil {
			return fmt.Errorf("convert: docx write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

func docxDocumentXML(f *reflow.Formatter, blocks []reflow.Block) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, b := range blocks {
		switch b.Kind {
		case reflow.BlockHeading:
			sb.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
			sb.WriteString(escapeXML(f.Render(b)))
			sb.WriteString(`</w:t></w:r></w:p>`)
		case reflow.BlockBullets:
			// One paragraph per item; the normalized marker is part of
			// the text so no numbering.xml is needed.
			for _, line := range strings.Split(f.Render(b), "\n") {
				sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
				sb.WriteString(escapeXML(line))
				sb.WriteString(`</w:t></w:r></w:p>`)
			}
		default:
			sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
			sb.WriteString(escapeXML(f.Render(b)))
			sb.WriteString(`</w:t></w:r></w:p>`)
		}
	}

	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func escapeXML(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
