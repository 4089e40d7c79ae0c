// ABOUTME: Text extraction from uploaded PDF and plain-text documents
// ABOUTME: Dispatches on file extension; PDF pages are read with ledongthuc/pdf
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/harper/docqa/internal/models"
	"github.com/ledongthuc/pdf"
)

// Supported file extensions
const (
	ExtPDF = ".pdf"
	ExtTXT = ".txt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor converts raw document bytes into plain text
type Extractor struct{}

// New creates an Extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of data, choosing a decoder by the filename's extension.
// Whitespace-only output is returned unchanged; callers decide whether that is an error.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	switch FileType(filename) {
	case ExtPDF:
		return extractPDF(data)
	case ExtTXT:
		return extractText(data)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

// FileType returns the lower-cased extension of filename, including the dot
func FileType(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsSupported reports whether filename has an extension Extract can handle
func IsSupported(filename string) bool {
	switch FileType(filename) {
	case ExtPDF, ExtTXT:
		return true
	}
	return false
}

func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", models.ErrInvalidEncoding
	}
	return string(data), nil
}

// pageSource exposes the page texts of a document, 1-based like the PDF reader
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.reader.NumPage()
}

func (p pdfPages) PageText(i int) (string, error) {
	page := p.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	return joinPages(pdfPages{reader: reader})
}

// joinPages concatenates page texts with blank lines, skipping pages without text
func joinPages(src pageSource) (string, error) {
	var pages []string
	for i := 1; i <= src.NumPage(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}
