package docparse

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseMissingFile(t *testing.T) {
	_, err := New().Parse(filepath.Join(t.TempDir(), "nope.txt"), MimeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestParseEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "")
	_, err := New().Parse(path, MimeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file is empty")
}

func TestParseUnsupportedType(t *testing.T) {
	path := writeTempFile(t, "calendar.xlsx", "not really a spreadsheet")
	_, err := New().Parse(path, "application/vnd.ms-excel")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParsePlainText(t *testing.T) {
	path := writeTempFile(t, "calendar.txt", "29 Ekim 2025 Cumhuriyet Bayramı\n")
	result, err := New().Parse(path, MimeText)
	require.NoError(t, err)
	assert.Equal(t, "29 Ekim 2025 Cumhuriyet Bayramı\n", result.Text)
	assert.Empty(t, result.Messages)
}

func TestParseNormalizesMimeParameters(t *testing.T) {
	path := writeTempFile(t, "calendar.txt", "15-19 Eylül 2025 Ders Kayıtları")
	result, err := New().Parse(path, "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Ders Kayıtları")
}

func TestParseInvalidUTF8Warns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.txt")
	require.NoError(t, os.WriteFile(path, []byte{'O', 'c', 'a', 'k', 0xff, 0xfe}, 0o644))

	result, err := New().Parse(path, MimeText)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Ocak")
	assert.NotEmpty(t, result.Messages)
}

func TestParseDocx(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>29 Ekim 2025 Cumhuriyet Bayram` + "ı" + `</w:t></w:r></w:p>
    <w:p><w:r><w:t>15-19 Eyl` + "ü" + `l 2025 Ders Kay` + "ı" + `tlar` + "ı" + `</w:t></w:r></w:p>
  </w:body>
</w:document>`

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	entry, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "calendar.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	result, err := New().Parse(path, MimeDocx)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "29 Ekim 2025 Cumhuriyet Bayramı")
	assert.Contains(t, result.Text, "15-19 Eylül 2025 Ders Kayıtları")
}

func TestParseDocxWithoutDocumentXML(t *testing.T) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	entry, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = New().Parse(path, MimeDocx)
	assert.Error(t, err)
}
