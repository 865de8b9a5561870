package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parsererror"
)

// TextExtractor turns a file into a StatementDocument.
type TextExtractor interface {
	Extract(filePath string) (*models.StatementDocument, error)
}

// PDFExtractor reads text layers with the ledongthuc/pdf library.
// Each call opens its own file handle, so one value may be shared.
type PDFExtractor struct{}

// NewPDFExtractor returns a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads every page of the PDF at filePath. Pages with no text layer
// contribute an empty string. Any failure to open or decode the container is
// reported as a *parsererror.DocumentOpenError.
func (e *PDFExtractor) Extract(filePath string) (*models.StatementDocument, error) {
	pages, err := ExtractText(filePath)
	if err != nil {
		return nil, err
	}
	return models.NewStatementDocument(pages), nil
}

// ExtractText returns the text of each page of the PDF, in order.
func ExtractText(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &parsererror.DocumentOpenError{
				Path: filePath,
				Err:  fmt.Errorf("PDF library crashed: %v", r),
			}
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, &parsererror.DocumentOpenError{Path: filePath, Err: openErr}
	}
	defer f.Close()

	numPages := r.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, pageText(r.Page(i)))
	}
	return pages, nil
}

// pageText reconstructs lines with GetTextByRow, which keeps labels and
// values on the same row together. Pages the row method cannot decode fall
// back to the plain text stream. Unreadable pages yield "".
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}

	if text := textByRow(page); text != "" {
		return text
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func textByRow(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// TextQuality returns the share of readable ASCII characters across pages,
// from 0.0 to 1.0. Identity-encoded fonts tend to produce text that scores
// low here even though the library reports no error.
func TextQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"₹$%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// IsReadableText reports whether the pages hold enough decodable text for
// field extraction to have a chance.
func IsReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n > 50 && TextQuality(pages) > 0.6
}
