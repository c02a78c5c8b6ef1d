package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkravets/docqa/internal/core/domain"
)

type fakeEmbedder struct {
	queryVectors map[string][]float32
	err          error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.queryVectors[text]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryVectors[text], nil
}

func TestAggregateScoresKeepsBestPerDocument(t *testing.T) {
	embedder := &fakeEmbedder{queryVectors: map[string][]float32{
		"close": {1, 0},
		"far":   {0, 1},
	}}
	docs := []domain.Document{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.6, 0.8}},
	}

	got, err := aggregateScores(context.Background(), embedder, newTestScorer(), []string{"close", "far"}, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	// Doc a: cosine 1.0 against "close", 0 against "far". Doc b: 0.6 / 0.8,
	// the max-reduction keeps 0.8.
	if got[0].Document.ID != "a" || got[0].MaxScore < 0.999 {
		t.Fatalf("expected doc a first with score ~1, got %s score=%v", got[0].Document.ID, got[0].MaxScore)
	}
	if got[1].Document.ID != "b" || got[1].MaxScore < 0.799 || got[1].MaxScore > 0.801 {
		t.Fatalf("expected doc b with score ~0.8, got %s score=%v", got[1].Document.ID, got[1].MaxScore)
	}
}

func TestAggregateScoresKeywordFallbackWithoutEmbeddings(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedder down")}
	docs := []domain.Document{
		{ID: "a", Title: "Vacation Policy", Content: "Vacation days accrue monthly."},
		{ID: "b", Title: "Parking", Content: "Parking requires a permit."},
	}

	got, err := aggregateScores(context.Background(), embedder, newTestScorer(), []string{"vacation"}, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Document.ID != "a" {
		t.Fatalf("expected keyword-matched doc first, got %s", got[0].Document.ID)
	}
	if got[0].MaxScore <= 0 {
		t.Fatalf("expected positive keyword score, got %v", got[0].MaxScore)
	}
	if got[1].MaxScore != 0 {
		t.Fatalf("expected zero score for unrelated doc, got %v", got[1].MaxScore)
	}
}

func TestAggregateScoresDocWithoutEmbeddingUsesKeywords(t *testing.T) {
	embedder := &fakeEmbedder{queryVectors: map[string][]float32{
		"vacation": {1, 0},
	}}
	docs := []domain.Document{
		{ID: "plain", Title: "Vacation", Content: "Vacation text."},
	}

	got, err := aggregateScores(context.Background(), embedder, newTestScorer(), []string{"vacation"}, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].MaxScore <= 0 {
		t.Fatalf("expected keyword score for embedding-less doc, got %v", got[0].MaxScore)
	}
}

func TestAggregateScoresCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []domain.Document{{ID: "a", Content: "text"}}
	_, err := aggregateScores(ctx, &fakeEmbedder{}, newTestScorer(), []string{"q"}, docs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSortCandidatesTieBreaksByID(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		{Document: domain.Document{ID: "b", UpdatedAt: time.Now()}, MaxScore: 0.5},
		{Document: domain.Document{ID: "a", UpdatedAt: time.Now()}, MaxScore: 0.5},
		{Document: domain.Document{ID: "c"}, MaxScore: 0.9},
	}
	sortCandidates(candidates)
	if candidates[0].Document.ID != "c" {
		t.Fatalf("expected highest score first, got %s", candidates[0].Document.ID)
	}
	if candidates[1].Document.ID != "a" || candidates[2].Document.ID != "b" {
		t.Fatalf("expected ID tie-break, got %s then %s", candidates[1].Document.ID, candidates[2].Document.ID)
	}
}
