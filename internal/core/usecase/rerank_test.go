package usecase

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dkravets/docqa/internal/core/domain"
)

func TestRerankExactPhrasePinnedAboveRange(t *testing.T) {
	now := time.Now()
	candidates := []domain.ScoredCandidate{
		{
			Document: domain.Document{
				ID:        "exact",
				Title:     "Resignation Policy",
				Content:   "Employees must give notice to resign. The notice period is one month.",
				UpdatedAt: now,
			},
			MaxScore: 0.4,
		},
		{
			Document: domain.Document{
				ID:        "partial",
				Title:     "Benefits",
				Content:   "Health coverage details.",
				UpdatedAt: now,
			},
			MaxScore: 0.9,
		},
	}

	got := rerankCandidates(newTestScorer(), "give notice to resign", candidates, now)
	if got[0].Document.ID != "exact" {
		t.Fatalf("expected exact-phrase doc pinned first, got %s", got[0].Document.ID)
	}
	wantCombined := 1.0 + 0.1*0.4
	if math.Abs(got[0].Combined-wantCombined) > 1e-9 {
		t.Fatalf("expected pinned combined %v, got %v", wantCombined, got[0].Combined)
	}
	if got[0].Keyword != 1.0 {
		t.Fatalf("expected keyword component 1.0 for exact match, got %v", got[0].Keyword)
	}
}

func TestRerankWeightsShiftWhenSimilarityWeak(t *testing.T) {
	now := time.Now()
	doc := domain.Document{
		ID:        "a",
		Title:     "Vacation",
		Content:   "Vacation days accrue monthly.",
		UpdatedAt: now,
	}
	scorer := newTestScorer()
	kw := scorer.Score("vacation accrue", doc.Title, doc.Content) / keywordNormalizer

	strong := rerankCandidates(scorer, "vacation accrue", []domain.ScoredCandidate{{Document: doc, MaxScore: 0.5}}, now)
	weak := rerankCandidates(scorer, "vacation accrue", []domain.ScoredCandidate{{Document: doc, MaxScore: 0.2}}, now)

	wantStrong := 0.5*0.6 + kw*0.3 + 1.0*0.1
	if math.Abs(strong[0].Combined-wantStrong) > 1e-9 {
		t.Fatalf("strong similarity: expected %v, got %v", wantStrong, strong[0].Combined)
	}

	// At 0.2 the keyword signal takes the heavier weight.
	wantWeak := 0.2*0.3 + kw*0.6 + 1.0*0.1
	if math.Abs(weak[0].Combined-wantWeak) > 1e-9 {
		t.Fatalf("weak similarity: expected %v, got %v", wantWeak, weak[0].Combined)
	}
}

func TestRerankKeywordBoostCapsAtOne(t *testing.T) {
	now := time.Now()
	// Enough repeated hits to exceed the normalizer while staying below the
	// exact-phrase sentinel.
	content := ""
	for i := 0; i < 60; i++ {
		content += "vacation "
	}
	doc := domain.Document{ID: "a", Title: "", Content: content, UpdatedAt: now}

	got := rerankCandidates(newTestScorer(), "vacation policy", []domain.ScoredCandidate{{Document: doc, MaxScore: 0.5}}, now)
	if got[0].Keyword != 1.0 {
		t.Fatalf("expected keyword component capped at 1.0, got %v", got[0].Keyword)
	}
}

func TestRerankKeepsTopThree(t *testing.T) {
	now := time.Now()
	candidates := make([]domain.ScoredCandidate, 0, 5)
	for i := 0; i < 5; i++ {
		candidates = append(candidates, domain.ScoredCandidate{
			Document: domain.Document{
				ID:        fmt.Sprintf("doc-%d", i),
				Content:   "unrelated text",
				UpdatedAt: now,
			},
			MaxScore: 0.9 - float64(i)*0.1,
		})
	}

	got := rerankCandidates(newTestScorer(), "question", candidates, now)
	if len(got) != finalResultCount {
		t.Fatalf("expected %d results, got %d", finalResultCount, len(got))
	}
	if got[0].Document.ID != "doc-0" {
		t.Fatalf("expected highest similarity first, got %s", got[0].Document.ID)
	}
}

func TestRerankTieBreaksByDocumentID(t *testing.T) {
	now := time.Now()
	mk := func(id string) domain.ScoredCandidate {
		return domain.ScoredCandidate{
			Document: domain.Document{ID: id, Content: "same text", UpdatedAt: now},
			MaxScore: 0.5,
		}
	}

	got := rerankCandidates(newTestScorer(), "question", []domain.ScoredCandidate{mk("b"), mk("a")}, now)
	if got[0].Document.ID != "a" || got[1].Document.ID != "b" {
		t.Fatalf("expected ID tie-break, got %s then %s", got[0].Document.ID, got[1].Document.ID)
	}
}

func TestRecencyScore(t *testing.T) {
	now := time.Now()

	if got := recencyScore(now, now); got != 1 {
		t.Fatalf("expected 1 for a fresh document, got %v", got)
	}
	if got := recencyScore(now.Add(time.Hour), now); got != 1 {
		t.Fatalf("expected 1 for a future timestamp, got %v", got)
	}
	if got := recencyScore(now.Add(-recencyWindow), now); got != 0 {
		t.Fatalf("expected 0 at the window edge, got %v", got)
	}
	if got := recencyScore(now.Add(-2*recencyWindow), now); got != 0 {
		t.Fatalf("expected 0 beyond the window, got %v", got)
	}

	half := recencyScore(now.Add(-recencyWindow/2), now)
	if math.Abs(half-0.5) > 1e-9 {
		t.Fatalf("expected 0.5 at half the window, got %v", half)
	}
}

func TestRerankRecencyBreaksNearTies(t *testing.T) {
	now := time.Now()
	fresh := domain.ScoredCandidate{
		Document: domain.Document{ID: "fresh", Content: "same text", UpdatedAt: now},
		MaxScore: 0.5,
	}
	stale := domain.ScoredCandidate{
		Document: domain.Document{ID: "aged", Content: "same text", UpdatedAt: now.Add(-recencyWindow)},
		MaxScore: 0.5,
	}

	got := rerankCandidates(newTestScorer(), "question", []domain.ScoredCandidate{stale, fresh}, now)
	if got[0].Document.ID != "fresh" {
		t.Fatalf("expected the fresher document first, got %s", got[0].Document.ID)
	}
}
