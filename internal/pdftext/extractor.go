// Package pdftext extracts plain text from PDF bytes. It is the boundary to
// the PDF library; callers only see the text or ErrUnreadable.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable marks PDF bytes that cannot be parsed as a readable document.
var ErrUnreadable = errors.New("unreadable pdf")

// Extractor turns PDF bytes into text. Implemented by Reader; faked in tests.
type Extractor interface {
	GetText(data []byte) (string, error)
}

// Reader is the production Extractor.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// GetText parses the document and concatenates the plain text of all pages.
// The underlying library panics on some malformed inputs, so parsing is
// fenced with a recover and every failure maps to ErrUnreadable.
func (r *Reader) GetText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrUnreadable)
	}
	return b.String(), nil
}
