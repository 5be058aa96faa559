package extraction

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexcorpus/core"
)

func writeDOCX(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>`)
		for i, run := range strings.Split(p, "|") {
			if i > 0 {
				body.WriteString(`<w:r><w:tab/></w:r>`)
			}
			body.WriteString(`<w:r><w:t xml:space="preserve">`)
			body.WriteString(run)
			body.WriteString(`</w:t></w:r>`)
		}
		body.WriteString(`</w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	w, err = zw.Create(documentPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestExtractDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peca.docx")
	writeDOCX(t, path, "EXCELENTÍSSIMO SENHOR JUIZ", "Autor|Réu", "")

	text, err := ExtractDOCX(path)
	require.NoError(t, err)
	assert.Equal(t, "EXCELENTÍSSIMO SENHOR JUIZ\nAutor\tRéu\n", text)
}

func TestExtractDOCX_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := ExtractDOCX(path)
	assert.ErrorIs(t, err, ErrNotDOCX)
}

func TestExtractor_Walk(t *testing.T) {
	root := t.TempDir()
	writeDOCX(t, filepath.Join(root, "04. Tributário", "a.docx"), "um dois três")
	writeDOCX(t, filepath.Join(root, "08. Previdenciário", "a.docx"), "quatro cinco")
	writeDOCX(t, filepath.Join(root, "vazio.DOCX"), "   ")
	writeDOCX(t, filepath.Join(root, "~$lock.docx"), "lock")
	require.NoError(t, os.WriteFile(filepath.Join(root, "quebrado.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notas.txt"), []byte("x"), 0o644))

	docs, stats, err := NewExtractor(WithConcurrency(2)).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Stats{Found: 4, Failed: 1, Empty: 1, Written: 2}, stats)
	require.Len(t, docs, 2)
	assert.Equal(t, "04. Tributário/a.docx", docs[0].ID)
	assert.Equal(t, 3, docs[0].Words)
	assert.Equal(t, core.Fingerprint("um dois três"), docs[0].Fingerprint)
	assert.Equal(t, "08. Previdenciário/a.docx", docs[1].ID)
}

func TestExtractor_WalkEmpty(t *testing.T) {
	_, _, err := NewExtractor().Walk(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, _, err = NewExtractor().Walk(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func docWithWords(id string, n int) *core.Document {
	text := strings.TrimSpace(strings.Repeat("palavra ", n))
	return &core.Document{ID: id, Text: text, Words: core.CountWords(text)}
}

func TestFilter_Apply(t *testing.T) {
	docs := []*core.Document{
		docWithWords("small", 10),
		docWithWords("ok", 400),
		docWithWords("huge", 30000),
	}

	kept, stats := DefaultFilter().Apply(docs)
	require.Len(t, kept, 1)
	assert.Equal(t, "ok", kept[0].ID)
	assert.Equal(t, FilterStats{Total: 3, Kept: 1, TooSmall: 1, TooLarge: 1}, stats)
}

func TestFilter_Bounds(t *testing.T) {
	f := &Filter{MinWords: 300, MaxWords: 25000}
	kept, _ := f.Apply([]*core.Document{docWithWords("min", 300), docWithWords("max", 25000), docWithWords("under", 299)})
	assert.Len(t, kept, 2, "bounds are inclusive")
}

func TestFilter_Dedupe(t *testing.T) {
	a := docWithWords("a", 5)
	b := docWithWords("b", 5)
	f := &Filter{MinWords: 0, MaxWords: 100, Dedupe: true}

	kept, stats := f.Apply([]*core.Document{a, b})
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, DefaultFilter().Validate())
	assert.ErrorIs(t, (&Filter{MinWords: 10, MaxWords: 5}).Validate(), ErrInvalidRange)
	assert.ErrorIs(t, (&Filter{MinWords: -1, MaxWords: 5}).Validate(), ErrInvalidRange)
}
