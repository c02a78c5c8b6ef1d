package usecase

import (
	"strings"

	"github.com/dkravets/docqa/internal/core/domain"
)

// ExactPhraseScore is the sentinel returned when the full query appears
// verbatim in a document's content. It dominates every other lexical signal.
const ExactPhraseScore = 100.0

const (
	overrideDirectWeight  = 3.0
	overrideSynonymWeight = 2.5
)

type keywordScorer struct {
	stop     map[string]struct{}
	override map[string]struct{}
	synonyms map[string][]string
}

func newKeywordScorer(vocab domain.Vocabulary) *keywordScorer {
	s := &keywordScorer{
		stop:     make(map[string]struct{}, len(vocab.StopWords)),
		override: make(map[string]struct{}, len(vocab.OverrideTerms)),
		synonyms: vocab.Synonyms,
	}
	for _, w := range vocab.StopWords {
		s.stop[w] = struct{}{}
	}
	for _, w := range vocab.OverrideTerms {
		s.override[w] = struct{}{}
	}
	if s.synonyms == nil {
		s.synonyms = map[string][]string{}
	}
	return s
}

// Score computes the lexical relevance of query against title+content.
// An exact (case-insensitive) substring match of the query inside content
// short-circuits to ExactPhraseScore.
func (s *keywordScorer) Score(query, title, content string) float64 {
	queryTerms := tokenize(query)
	textTerms := tokenize(title + " " + content)
	if len(queryTerms) == 0 || len(textTerms) == 0 {
		return 0
	}

	if content != "" && strings.Contains(strings.ToLower(content), strings.ToLower(query)) {
		return ExactPhraseScore
	}

	freq := make(map[string]int, len(textTerms))
	for _, t := range textTerms {
		freq[t]++
	}

	var score float64
	for _, term := range queryTerms {
		_, isOverride := s.override[term]
		if _, isStop := s.stop[term]; isStop && !isOverride {
			continue
		}

		if n := freq[term]; n > 0 {
			weight := 1.0
			if isOverride {
				weight = overrideDirectWeight
			}
			score += float64(n) * weight
		}

		for _, synonym := range s.synonyms[term] {
			if n := freq[synonym]; n > 0 {
				weight := 1.0
				if isOverride {
					weight = overrideSynonymWeight
				}
				score += float64(n) * weight
			}
		}
	}
	return score
}

// tokenize lower-cases the text and extracts runs of ASCII letters and
// digits; everything else separates tokens.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range text {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
