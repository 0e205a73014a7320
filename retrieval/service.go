package retrieval

import (
	"context"
	"fmt"
	"log"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/vectorstore"
)

// Searcher is the primary retrieval backend: an external structured source
// that may be absent or fail transiently. Implementations return results
// already ranked best-first with distances attached.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Result, error)
}

// Service retrieves context through the primary backend when it is
// configured and healthy, falling back to direct vector search otherwise.
type Service struct {
	store     vectorstore.Store
	primary   Searcher
	logger    *log.Logger
	topK      int
	threshold float64
}

// Options tune a single Retrieve call. The zero value prefers the primary
// backend and uses the configured top-K.
type Options struct {
	K              int
	DisablePrimary bool
}

func NewService(store vectorstore.Store, primary Searcher, topK int, threshold float64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:     store,
		primary:   primary,
		logger:    logger,
		topK:      topK,
		threshold: threshold,
	}
}

// Retrieve returns relevance-filtered results for the query. Primary-backend
// failures are absorbed here: they are logged and retrieval continues on the
// vector-store path. An empty primary result set also falls through, so the
// fallback is always consulted before giving up.
func (s *Service) Retrieve(ctx context.Context, query string, opts Options) ([]Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("vector store is not configured")
	}

	k := opts.K
	if k <= 0 {
		k = s.topK
	}

	if !opts.DisablePrimary && s.primary != nil {
		results, err := s.primary.Search(ctx, query, k)
		switch {
		case err != nil:
			s.logger.Printf("primary retrieval failed: %v, falling back to vector search", err)
		case len(results) > 0:
			s.logger.Printf("retrieved %d results via primary backend", len(results))
			return FilterByRelevance(results, s.threshold), nil
		default:
			s.logger.Printf("primary backend returned no results, falling back to vector search")
		}
	}

	hits, err := s.store.Search(ctx, query, k, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{Chunk: hit.Chunk, Distance: hit.Distance}
	}

	return FilterByRelevance(results, s.threshold), nil
}
