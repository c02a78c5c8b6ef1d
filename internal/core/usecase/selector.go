package usecase

import (
	"strings"

	"github.com/dkravets/docqa/internal/core/domain"
)

// minCandidateFloor guarantees the reranker sees at least this many
// candidates whenever the pool allows it.
const minCandidateFloor = 3

// RetrievalTunables holds the adaptive thresholding constants. The values
// are heuristics carried over for behavioral parity, not tuned optima.
type RetrievalTunables struct {
	ShortQueryWords int

	ShortSimilarityThreshold float64
	LongSimilarityThreshold  float64
	ShortKeywordThreshold    float64
	LongKeywordThreshold     float64
	ShortSearchDepth         int
	LongSearchDepth          int

	DocumentWindow int
}

func DefaultRetrievalTunables() RetrievalTunables {
	return RetrievalTunables{
		ShortQueryWords:          4,
		ShortSimilarityThreshold: 0.12,
		LongSimilarityThreshold:  0.18,
		ShortKeywordThreshold:    8,
		LongKeywordThreshold:     12,
		ShortSearchDepth:         15,
		LongSearchDepth:          10,
		DocumentWindow:           50,
	}
}

type selectorGate struct {
	similarity float64
	keyword    float64
	depth      int
}

// gateFor sizes the thresholds by the word count of the original question:
// short questions get a lower bar and a deeper cut.
func (t RetrievalTunables) gateFor(question string) selectorGate {
	words := len(strings.Fields(question))
	if words <= t.ShortQueryWords {
		return selectorGate{
			similarity: t.ShortSimilarityThreshold,
			keyword:    t.ShortKeywordThreshold,
			depth:      t.ShortSearchDepth,
		}
	}
	return selectorGate{
		similarity: t.LongSimilarityThreshold,
		keyword:    t.LongKeywordThreshold,
		depth:      t.LongSearchDepth,
	}
}

// selectCandidates applies the disjunctive threshold gate and the depth cut
// to a list already sorted by MaxScore descending. Similarity and keyword
// scores live on different scales, so meeting either threshold passes. When
// filtering leaves fewer than minCandidateFloor candidates, the selection
// widens back into the unfiltered pool.
func selectCandidates(sorted []domain.ScoredCandidate, gate selectorGate) []domain.ScoredCandidate {
	filtered := make([]domain.ScoredCandidate, 0, len(sorted))
	for _, c := range sorted {
		if c.MaxScore >= gate.similarity || c.MaxScore >= gate.keyword {
			filtered = append(filtered, c)
		}
	}

	pool := filtered
	if len(pool) == 0 {
		pool = sorted
	}
	top := pool
	if len(top) > gate.depth {
		top = top[:gate.depth]
	}

	if len(top) < minCandidateFloor {
		widened := minCandidateFloor
		if len(top) > widened {
			widened = len(top)
		}
		if widened > len(sorted) {
			widened = len(sorted)
		}
		return sorted[:widened]
	}
	return top
}
