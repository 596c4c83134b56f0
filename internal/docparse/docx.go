package docparse

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractWordText pulls the raw text out of a .docx archive, discarding all
// markup. Paragraphs and explicit breaks become newlines, tabs stay tabs.
func extractWordText(path string) (*Result, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("not a valid Word document: %v", err)
	}
	defer reader.Close() //nolint:errcheck

	var doc *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("word/document.xml missing from document")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("open document body: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	result := &Result{}
	text, warnings, err := scanDocumentXML(rc)
	if err != nil {
		return nil, err
	}
	result.Text = text
	result.Messages = warnings
	return result, nil
}

func scanDocumentXML(r io.Reader) (string, []string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var warnings []string
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A truncated body still yields whatever was decoded so far.
			if sb.Len() > 0 {
				warnings = append(warnings, fmt.Sprintf("document body truncated: %v", err))
				break
			}
			return "", nil, fmt.Errorf("decode document body: %v", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), warnings, nil
}
