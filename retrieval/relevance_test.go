package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
)

func resultWithDistance(id string, distance float64) Result {
	return Result{
		Chunk: document.Chunk{
			ID:   id,
			Text: "chunk " + id,
			Metadata: document.Metadata{
				DocumentID: "doc_test",
				SourceFile: "test.txt",
			},
		},
		Distance: distance,
	}
}

func TestScoreMonotonicDecreasing(t *testing.T) {
	assert.Equal(t, 1.0, Score(0))
	assert.Greater(t, Score(0.1), Score(0.5))
	assert.Greater(t, Score(0.5), Score(2.0))
	assert.Greater(t, Score(2.0), 0.0)
}

func TestFilterByRelevanceAttachesScores(t *testing.T) {
	results := FilterByRelevance([]Result{
		resultWithDistance("a", 0.0),
		resultWithDistance("b", 1.0),
	}, 0)

	require.Len(t, results, 2)
	assert.Equal(t, 1.0, results[0].RelevanceScore)
	assert.Equal(t, 0.5, results[1].RelevanceScore)
}

func TestFilterByRelevanceThresholdDisabled(t *testing.T) {
	input := []Result{
		resultWithDistance("a", 5.0),
		resultWithDistance("b", 9.0),
	}

	results := FilterByRelevance(input, 0)
	require.Len(t, results, 2)
	results = FilterByRelevance(input, -1)
	require.Len(t, results, 2)
}

func TestFilterByRelevanceDropsBelowThreshold(t *testing.T) {
	results := FilterByRelevance([]Result{
		resultWithDistance("near", 0.2),
		resultWithDistance("far", 4.0),
	}, 0.5)

	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Chunk.ID)
}

func TestFilterByRelevanceNonEmptyGuarantee(t *testing.T) {
	input := []Result{
		resultWithDistance("a", 4.0),
		resultWithDistance("b", 9.0),
		resultWithDistance("c", 19.0),
	}

	// Every score is below threshold; the filter must hand back the whole
	// scored list rather than an empty one.
	results := FilterByRelevance(input, 0.9)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, input[i].Chunk.ID, results[i].Chunk.ID)
		assert.InDelta(t, Score(input[i].Distance), result.RelevanceScore, 1e-12)
	}
}

func TestFilterByRelevancePreservesOrder(t *testing.T) {
	input := []Result{
		resultWithDistance("first", 0.1),
		resultWithDistance("second", 0.3),
		resultWithDistance("third", 0.2),
	}

	results := FilterByRelevance(input, 0.5)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestFilterByRelevanceEmptyInput(t *testing.T) {
	assert.Empty(t, FilterByRelevance(nil, 0.5))
}

func TestContextTextFormatsCitations(t *testing.T) {
	result := resultWithDistance("a", 0.0)
	result.Chunk.Metadata.SourceFile = "report.pdf"
	result.Chunk.Metadata.ChunkIndex = 2
	result.Chunk.Text = "The answer is 42."

	text := ContextText([]Result{result})
	assert.Contains(t, text, "[Source: report.pdf, Chunk 2]")
	assert.Contains(t, text, "The answer is 42.")
}

func TestContextTextEmptySentinel(t *testing.T) {
	assert.Equal(t, NoContextSentinel, ContextText(nil))
	assert.Equal(t, NoContextSentinel, ContextText([]Result{}))
}
