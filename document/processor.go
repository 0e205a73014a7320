package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

var allowedExtensions = map[string]struct{}{
	".pdf": {},
	".txt": {},
	".md":  {},
}

// Processor turns a source file into an ordered chunk sequence using a
// fixed-size sliding character window.
type Processor struct {
	chunkSize    int
	chunkOverlap int
}

// NewProcessor expects chunkSize and overlap already validated by config
// (overlap < chunkSize, both sane).
func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Process loads a document and chunks it.
func (p *Processor) Process(path string) ([]Chunk, error) {
	text, err := p.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return p.ChunkText(text, path, ""), nil
}

// LoadDocument reads the file's text content. The extension is validated
// before any content is touched; unsupported types fail fast with no
// partial state.
func (p *Processor) LoadDocument(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported file type %q (allowed: .pdf, .txt, .md)", ext)
	}

	if ext == ".pdf" {
		return loadPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

// loadPDF joins the extracted text of all pages with blank-line separators,
// skipping pages that contain only whitespace.
func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	pages := make([]string, 0, reader.NumPage())
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", num, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n\n"), nil
}

// ChunkText splits text into overlapping windows of chunkSize characters,
// stepping chunkSize-chunkOverlap each iteration. Windows are trimmed of
// surrounding whitespace; a window that trims to empty stops the walk so a
// whitespace-only tail cannot loop forever. Passing an empty documentID
// derives one from sourceFile, so identical inputs always produce identical
// chunk ids and boundaries.
func (p *Processor) ChunkText(text, sourceFile, documentID string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if documentID == "" {
		documentID = GenerateDocumentID(sourceFile)
	}

	runes := []rune(text)
	now := time.Now().UTC()

	chunks := make([]Chunk, 0, len(runes)/p.chunkSize+1)
	start := 0
	index := 0

	for start < len(runes) {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunkText := strings.TrimSpace(string(runes[start:end]))
		if chunkText == "" {
			break
		}

		chunks = append(chunks, Chunk{
			ID:   GenerateChunkID(documentID, index),
			Text: chunkText,
			Metadata: Metadata{
				DocumentID: documentID,
				ChunkIndex: index,
				SourceFile: sourceFile,
				ChunkSize:  len([]rune(chunkText)),
				CreatedAt:  now,
			},
		})

		start += p.chunkSize - p.chunkOverlap
		index++
	}

	return chunks
}
