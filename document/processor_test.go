package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextCoversWholeInput(t *testing.T) {
	p := NewProcessor(100, 20)
	text := strings.Repeat("abcdefghij", 45) // 450 chars, no whitespace to trim

	chunks := p.ChunkText(text, "doc.txt", "")
	require.NotEmpty(t, chunks)

	// With no trimmable whitespace, stitching each chunk at its window
	// offset must reproduce the original text end to end.
	step := 100 - 20
	var rebuilt strings.Builder
	for i, chunk := range chunks {
		assert.NotEmpty(t, chunk.Text)
		if i == 0 {
			rebuilt.WriteString(chunk.Text)
			continue
		}
		covered := rebuilt.Len()
		start := i * step
		require.LessOrEqual(t, start, covered, "chunk %d leaves a gap", i)
		if start+len(chunk.Text) > covered {
			rebuilt.WriteString(chunk.Text[covered-start:])
		}
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkTextDeterministicIDs(t *testing.T) {
	p := NewProcessor(50, 10)
	text := strings.Repeat("Hello world. ", 30)

	first := p.ChunkText(text, "notes.md", "")
	second := p.ChunkText(text, "notes.md", "")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunkTextOverlapStep(t *testing.T) {
	p := NewProcessor(100, 20)
	text := strings.Repeat("x", 500)

	chunks := p.ChunkText(text, "doc.txt", "")
	require.Greater(t, len(chunks), 1)

	// Adjacent windows advance by exactly chunkSize-overlap, so the tail of
	// chunk i re-appears at the head of chunk i+1.
	for i := 0; i < len(chunks)-1; i++ {
		overlap := chunks[i].Text[len(chunks[i].Text)-20:]
		assert.True(t, strings.HasPrefix(chunks[i+1].Text, overlap), "chunks %d and %d do not overlap", i, i+1)
	}
}

func TestChunkTextScenario(t *testing.T) {
	p := NewProcessor(1000, 200)
	text := strings.Repeat("Hello world. ", 200)
	require.Len(t, text, 2600)

	chunks := p.ChunkText(text, "greeting.txt", "doc_abc123def456")

	require.Len(t, chunks, 4)
	for i, chunk := range chunks {
		assert.Equal(t, GenerateChunkID("doc_abc123def456", i), chunk.ID)
		assert.LessOrEqual(t, len(chunk.Text), 1000)
		assert.Equal(t, i, chunk.Metadata.ChunkIndex)
		assert.Equal(t, "greeting.txt", chunk.Metadata.SourceFile)
		assert.Equal(t, len([]rune(chunk.Text)), chunk.Metadata.ChunkSize)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	p := NewProcessor(100, 20)

	assert.Empty(t, p.ChunkText("", "doc.txt", ""))
	assert.Empty(t, p.ChunkText("   \n\t  ", "doc.txt", ""))
}

func TestGenerateDocumentIDStable(t *testing.T) {
	first := GenerateDocumentID("some/dir/report.pdf")
	second := GenerateDocumentID("some/dir/report.pdf")

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "doc_"))
	assert.Len(t, first, len("doc_")+12)

	other := GenerateDocumentID("some/dir/other.pdf")
	assert.NotEqual(t, first, other)
}

func TestLoadDocumentRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c"), 0o644))

	p := NewProcessor(100, 20)
	_, err := p.LoadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadDocumentMissingFile(t *testing.T) {
	p := NewProcessor(100, 20)
	_, err := p.LoadDocument(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestLoadDocumentCaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NOTES.TXT")
	require.NoError(t, os.WriteFile(path, []byte("plain text content"), 0o644))

	p := NewProcessor(100, 20)
	content, err := p.LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "plain text content", content)
}

func TestProcessProducesChunksFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("Markdown body. ", 100)), 0o644))

	p := NewProcessor(200, 50)
	chunks, err := p.Process(path)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	docID := GenerateDocumentID(path)
	for _, chunk := range chunks {
		assert.Equal(t, docID, chunk.Metadata.DocumentID)
		assert.Equal(t, path, chunk.Metadata.SourceFile)
	}
}
