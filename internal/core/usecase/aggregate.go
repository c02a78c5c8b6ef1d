package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/core/ports"
)

// aggregateScores runs every (query variation) x (document) pairing and
// keeps the best score per document. Variations are scored concurrently;
// the merge is a commutative max-reduction, so the result does not depend on
// completion order. An embedding failure silently drops that variation to
// keyword scoring. A cancelled context aborts the whole retrieval: partial
// results are never returned as if complete.
func aggregateScores(
	ctx context.Context,
	embedder ports.Embedder,
	scorer *keywordScorer,
	queries []string,
	docs []domain.Document,
) ([]domain.ScoredCandidate, error) {
	var (
		mu   sync.Mutex
		best = make(map[string]float64, len(docs))
		wg   sync.WaitGroup
	)

	for _, query := range queries {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()

			var queryVec []float32
			if embedder != nil {
				if vec, err := embedder.EmbedQuery(ctx, query); err == nil {
					queryVec = vec
				}
			}

			local := make(map[string]float64, len(docs))
			for i := range docs {
				doc := &docs[i]
				var score float64
				if len(queryVec) > 0 && len(doc.Embedding) > 0 {
					score = domain.CosineSimilarity(queryVec, doc.Embedding)
				} else {
					score = scorer.Score(query, doc.Title, doc.Content)
				}
				local[doc.ID] = score
			}

			mu.Lock()
			for id, score := range local {
				if current, ok := best[id]; !ok || score > current {
					best[id] = score
				}
			}
			mu.Unlock()
		}(query)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ScoredCandidate, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.ScoredCandidate{Document: doc, MaxScore: best[doc.ID]})
	}
	sortCandidates(out)
	return out, nil
}

// sortCandidates orders by MaxScore descending with a document-ID tie-break
// so the ranking is deterministic.
func sortCandidates(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MaxScore != candidates[j].MaxScore {
			return candidates[i].MaxScore > candidates[j].MaxScore
		}
		return candidates[i].Document.ID < candidates[j].Document.ID
	})
}
