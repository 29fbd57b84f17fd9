// Package document converts uploaded documents to plain text.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"finai/internal/domain"
)

// ErrEmptyDocument is returned when the document has no extractable text
var ErrEmptyDocument = errors.New("document contains no extractable text")

// PDFExtractor extracts plain text from PDF bytes
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText returns the text of every page, one page per line block
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

var _ domain.DocumentExtractor = (*PDFExtractor)(nil)
