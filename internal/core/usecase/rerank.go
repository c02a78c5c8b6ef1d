package usecase

import (
	"sort"
	"time"

	"github.com/dkravets/docqa/internal/core/domain"
)

const (
	finalResultCount = 3

	keywordNormalizer = 50.0
	recencyWindow     = 30 * 24 * time.Hour
)

// rerankCandidates blends similarity, keyword and recency into the final
// ordering and keeps the best finalResultCount documents. The keyword boost
// uses the original question, not the variations. An exact phrase hit is
// pinned above the normal scoring range, with similarity only breaking ties
// between multiple exact matches.
func rerankCandidates(
	scorer *keywordScorer,
	question string,
	candidates []domain.ScoredCandidate,
	now time.Time,
) []domain.RerankedCandidate {
	reranked := make([]domain.RerankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		keywordBoost := scorer.Score(question, c.Document.Title, c.Document.Content)
		recencyBoost := recencyScore(c.Document.UpdatedAt, now)

		if keywordBoost >= ExactPhraseScore {
			reranked = append(reranked, domain.RerankedCandidate{
				Document:   c.Document,
				Combined:   1.0 + 0.1*c.MaxScore,
				Similarity: c.MaxScore,
				Keyword:    1.0,
				Recency:    recencyBoost,
			})
			continue
		}

		normalizedKeyword := keywordBoost / keywordNormalizer
		if normalizedKeyword > 1 {
			normalizedKeyword = 1
		}

		// Lean on literal keyword overlap when the similarity signal is weak.
		similarityWeight, keywordWeight := 0.6, 0.3
		if c.MaxScore <= 0.2 {
			similarityWeight, keywordWeight = 0.3, 0.6
		}
		const recencyWeight = 0.1

		reranked = append(reranked, domain.RerankedCandidate{
			Document:   c.Document,
			Combined:   c.MaxScore*similarityWeight + normalizedKeyword*keywordWeight + recencyBoost*recencyWeight,
			Similarity: c.MaxScore,
			Keyword:    normalizedKeyword,
			Recency:    recencyBoost,
		})
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		if reranked[i].Combined != reranked[j].Combined {
			return reranked[i].Combined > reranked[j].Combined
		}
		return reranked[i].Document.ID < reranked[j].Document.ID
	})

	if len(reranked) > finalResultCount {
		reranked = reranked[:finalResultCount]
	}
	return reranked
}

// recencyScore decays linearly from 1 to 0 over recencyWindow.
func recencyScore(updatedAt, now time.Time) float64 {
	age := now.Sub(updatedAt)
	if age <= 0 {
		return 1
	}
	score := 1 - float64(age)/float64(recencyWindow)
	if score < 0 {
		return 0
	}
	return score
}
