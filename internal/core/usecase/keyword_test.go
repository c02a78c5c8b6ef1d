package usecase

import (
	"testing"

	"github.com/dkravets/docqa/internal/core/domain"
)

func newTestScorer() *keywordScorer {
	return newKeywordScorer(domain.DefaultVocabulary())
}

func TestScoreExactPhraseShortCircuits(t *testing.T) {
	s := newTestScorer()
	got := s.Score("one month's written notice", "Policy", "Employees must give one month's written notice to resign.")
	if got != ExactPhraseScore {
		t.Fatalf("expected exact phrase score %v, got %v", ExactPhraseScore, got)
	}
}

func TestScoreExactPhraseIsCaseInsensitive(t *testing.T) {
	s := newTestScorer()
	got := s.Score("ONE MONTH'S WRITTEN NOTICE", "", "Employees must give one month's written notice to resign.")
	if got != ExactPhraseScore {
		t.Fatalf("expected exact phrase score %v, got %v", ExactPhraseScore, got)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	s := newTestScorer()
	if got := s.Score("", "title", "content"); got != 0 {
		t.Fatalf("empty query: expected 0, got %v", got)
	}
	if got := s.Score("query", "", ""); got != 0 {
		t.Fatalf("empty text: expected 0, got %v", got)
	}
}

func TestScoreSkipsStopWords(t *testing.T) {
	s := newTestScorer()
	// Every query term is a stop word and none are overrides. The content
	// shuffles the words so the whole query never appears verbatim.
	got := s.Score("the and for", "", "and the for the and")
	if got != 0 {
		t.Fatalf("expected 0 for stop-word-only query, got %v", got)
	}
}

func TestScoreOverrideTermBeatsPlainTerm(t *testing.T) {
	s := newTestScorer()
	// "policy" keeps the queries from matching the content verbatim.
	override := s.Score("resign policy", "", "people resign here")
	plain := s.Score("people policy", "", "people resign here")
	if override <= plain {
		t.Fatalf("expected override term to outscore plain term: override=%v plain=%v", override, plain)
	}
	// Direct hit plus the self-synonym hit from the vocabulary list.
	want := overrideDirectWeight + overrideSynonymWeight
	if override != want {
		t.Fatalf("expected override score %v, got %v", want, override)
	}
}

func TestScoreCountsSynonyms(t *testing.T) {
	s := newTestScorer()
	// "resign" never appears, but its synonym "quit" does. Direct miss plus
	// one synonym hit at the override synonym weight.
	got := s.Score("resign", "", "you may quit at any time")
	if got != overrideSynonymWeight {
		t.Fatalf("expected synonym weight %v, got %v", overrideSynonymWeight, got)
	}
}

func TestScoreTermFrequencyAccumulates(t *testing.T) {
	s := newTestScorer()
	once := s.Score("vacation allowance", "", "vacation policy")
	twice := s.Score("vacation allowance", "", "vacation vacation policy")
	if twice != 2*once {
		t.Fatalf("expected frequency to accumulate: once=%v twice=%v", once, twice)
	}
}

func TestScoreQuestionWordAndPronounSynonyms(t *testing.T) {
	s := newTestScorer()
	// "how" and "i" are plain terms with synonym lists, not stop words, so
	// they count toward the score through their synonyms.
	if got := s.Score("how", "", "what happens next"); got != 1 {
		t.Fatalf("expected question-word synonym hit, got %v", got)
	}
	if got := s.Score("i need", "", "staff plan ahead"); got != 1 {
		t.Fatalf("expected pronoun synonym hit, got %v", got)
	}
}

func TestScoreTitleContributesTerms(t *testing.T) {
	s := newTestScorer()
	got := s.Score("vacation", "Vacation Policy", "unrelated body text")
	if got != 1 {
		t.Fatalf("expected title terms to count, got %v", got)
	}
}

func TestScoreExactPhraseIgnoresTitle(t *testing.T) {
	s := newTestScorer()
	// The phrase appears only in the title; the sentinel applies to content
	// matches alone.
	got := s.Score("vacation policy", "vacation policy", "days off are described elsewhere")
	if got >= ExactPhraseScore {
		t.Fatalf("expected no sentinel for title-only phrase match, got %v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("How much notice, do I need?")
	want := []string{"how", "much", "notice", "do", "i", "need"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
