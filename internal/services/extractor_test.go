package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)

	w, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Senior QA </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Selenium</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDOCX(t *testing.T) {
	text, err := ExtractDOCX(buildDOCX(t, sampleDocumentXML))

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior QA Engineer\n\nSkills:\tSelenium", text)
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractDOCX(buf.Bytes())

	assert.ErrorContains(t, err, "word/document.xml not found")
}

func TestExtractTXT(t *testing.T) {
	t.Run("utf-8", func(t *testing.T) {
		assert.Equal(t, "Zoë Müller", ExtractTXT([]byte("Zoë Müller")))
	})

	t.Run("byte order mark", func(t *testing.T) {
		assert.Equal(t, "CV", ExtractTXT([]byte("\xef\xbb\xbfCV")))
	})

	t.Run("latin-1 fallback", func(t *testing.T) {
		latin1 := []byte{'J', 'o', 's', 0xe9, ' ', 'M', 0xfc, 'l', 'l', 'e', 'r'}

		assert.Equal(t, "José Müller", ExtractTXT(latin1))
	})
}

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()

	t.Run("txt is cleaned", func(t *testing.T) {
		got := e.Extract("cv.TXT", []byte("  Jane Doe  \n\n\n  QA Engineer\n"))

		assert.Equal(t, "Jane Doe\nQA Engineer", got)
	})

	t.Run("docx", func(t *testing.T) {
		got := e.Extract("cv.docx", buildDOCX(t, sampleDocumentXML))

		assert.Equal(t, "Jane Doe\nSenior QA Engineer\nSkills:\tSelenium", got)
	})

	t.Run("broken pdf yields empty text", func(t *testing.T) {
		assert.Empty(t, e.Extract("cv.pdf", []byte("not a pdf")))
	})

	t.Run("broken docx yields empty text", func(t *testing.T) {
		assert.Empty(t, e.Extract("cv.docx", []byte("not a zip")))
	})

	t.Run("unsupported extension yields empty text", func(t *testing.T) {
		assert.Empty(t, e.Extract("cv.rtf", []byte("{\\rtf1}")))
	})
}
