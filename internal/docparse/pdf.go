package docparse

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText extracts plain text page by page. Pages that fail to decode
// are skipped and reported as warnings rather than failing the whole document.
func extractPDFText(path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("not a valid PDF document: %v", err)
	}
	defer f.Close() //nolint:errcheck

	var sb strings.Builder
	var warnings []string

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	if sb.Len() == 0 {
		return nil, fmt.Errorf("no extractable text in PDF")
	}

	return &Result{Text: sb.String(), Messages: warnings}, nil
}
