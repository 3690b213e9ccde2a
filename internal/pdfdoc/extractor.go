// Package pdfdoc loads PDF documents for the read-aloud flow: page count,
// per-page plain text and a best-effort outline.
package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is a parsed PDF: one text entry per page.
type Document struct {
	Name      string   `json:"name"`
	PageCount int      `json:"pageCount"`
	Pages     []string `json:"pages"`
}

// PageText returns the text of a zero-based page index.
func (d *Document) PageText(page int) (string, error) {
	if page < 0 || page >= len(d.Pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, len(d.Pages))
	}
	return d.Pages[page], nil
}

// Parse reads a PDF from memory and extracts per-page text. Pages whose text
// cannot be extracted come back empty rather than failing the document.
func Parse(data []byte, name string) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	total := reader.NumPage()
	doc := &Document{
		Name:      name,
		PageCount: total,
		Pages:     make([]string, 0, total),
	}

	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		doc.Pages = append(doc.Pages, strings.TrimSpace(text))
	}

	return doc, nil
}

// OutlineEntry is one recognized heading.
type OutlineEntry struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Outline scans page texts for heading-looking lines: numbered headings and
// short all-caps lines.
func (d *Document) Outline() []OutlineEntry {
	var outline []OutlineEntry

	for pageIdx, text := range d.Pages {
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}

			if isNumberedHeading(trimmed) ||
				(len(trimmed) > 3 && len(trimmed) < 80 && strings.ToUpper(trimmed) == trimmed && strings.ContainsAny(trimmed, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")) {
				outline = append(outline, OutlineEntry{Title: trimmed, Page: pageIdx})
			}
		}
	}

	return outline
}

// isNumberedHeading matches patterns like "1.", "1.1", "2.3.1 Title".
func isNumberedHeading(line string) bool {
	if len(line) < 2 {
		return false
	}

	dotCount := 0
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' {
			dotCount++
			continue
		}
		if r == ' ' && dotCount > 0 && i < len(line)/2 {
			return true
		}
		break
	}
	return false
}
