// Package docparse converts stored calendar documents into plain text.
//
// Supported declared MIME types:
//   - Word documents (.docx): archive/zip over word/document.xml
//   - plain text: read directly, UTF-8 validated
//   - PDF: ledongthuc/pdf text extraction
//
// Parsing is a pure transform of file contents to text; failures are returned
// as values, never panics.
package docparse

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// MIME types accepted at the upload intake filter.
const (
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
)

// ErrUnsupportedType is terminal: re-submitting the same file cannot succeed.
var ErrUnsupportedType = fmt.Errorf("Unsupported file type")

// Result carries the extracted text plus any non-fatal extraction warnings.
type Result struct {
	Text     string
	Messages []string
}

// Parser extracts plain text from stored documents.
type Parser struct{}

// New constructs a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads the file at path and extracts its text according to the declared
// MIME type. The file must exist and be non-empty.
func (p *Parser) Parse(path, mimeType string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	switch normalizeMime(mimeType) {
	case MimeDoc, MimeDocx:
		return extractWordText(path)
	case MimeText:
		return readPlainText(path)
	case MimePDF:
		return extractPDFText(path)
	default:
		return nil, ErrUnsupportedType
	}
}

func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

func readPlainText(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %v", err)
	}

	result := &Result{Text: string(raw)}
	if !utf8.Valid(raw) {
		result.Text = strings.ToValidUTF8(string(raw), "�")
		result.Messages = append(result.Messages, "file contained invalid UTF-8 sequences; replaced")
	}
	return result, nil
}
