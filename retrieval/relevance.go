// Package retrieval turns vector-index distances into relevance-ranked
// context for the generation stage, with a primary/fallback source policy.
package retrieval

import (
	"fmt"
	"strings"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
)

// NoContextSentinel is returned instead of an empty context string so the
// generation prompt always has something to point at.
const NoContextSentinel = "No relevant context found."

// Result is a retrieved chunk with its raw distance and derived relevance.
type Result struct {
	Chunk          document.Chunk
	Distance       float64
	RelevanceScore float64
}

// Score maps a non-negative distance onto (0,1]; distance zero scores
// exactly 1, and the mapping is strictly decreasing.
func Score(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// FilterByRelevance attaches relevance scores to every result and drops the
// ones below threshold. A threshold at or below zero disables filtering.
// When a non-empty input would filter down to nothing, the original scored
// results are returned instead: a low-confidence context is more useful to
// the generator than none at all. Upstream ranking order is preserved.
func FilterByRelevance(results []Result, threshold float64) []Result {
	if len(results) == 0 {
		return nil
	}

	scored := make([]Result, len(results))
	copy(scored, results)
	for i := range scored {
		scored[i].RelevanceScore = Score(scored[i].Distance)
	}

	if threshold <= 0 {
		return scored
	}

	filtered := make([]Result, 0, len(scored))
	for _, result := range scored {
		if result.RelevanceScore >= threshold {
			filtered = append(filtered, result)
		}
	}

	if len(filtered) == 0 {
		return scored
	}

	return filtered
}

// ContextText renders results into citation-tagged blocks in ranking order.
func ContextText(results []Result) string {
	if len(results) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, fmt.Sprintf("[Source: %s, Chunk %d]\n%s\n",
			result.Chunk.Metadata.SourceFile,
			result.Chunk.Metadata.ChunkIndex,
			result.Chunk.Text,
		))
	}

	return strings.Join(parts, "\n")
}
