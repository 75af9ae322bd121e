package ocr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// isTextual reports whether the PDF already carries a usable text layer,
// judged by the first page alone. Malformed or protected files report false
// so they fall through to the OCR path.
func (p *Pipeline) isTextual(pdfPath string, threshold int) bool {
	text, err := firstPageText(pdfPath)
	if err != nil {
		p.log.WithError(err).WithField("pdf", pdfPath).Warn("textual check failed, falling back to OCR")
		return false
	}
	return significantChars(text) >= threshold
}

func firstPageText(pdfPath string) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", fmt.Errorf("pdf has no pages")
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("first page unreadable")
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract first page: %w", err)
	}
	return text, nil
}

// extractAllText pulls the embedded text layer from every page, pages joined
// by blank lines.
func extractAllText(pdfPath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n\n"), nil
}

// significantChars counts non-whitespace runes.
func significantChars(text string) int {
	count := 0
	for _, c := range text {
		if !unicode.IsSpace(c) {
			count++
		}
	}
	return count
}
