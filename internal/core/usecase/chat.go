package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/core/ports"
)

const (
	contextSnippetCount  = 3
	fallbackSnippetCount = 2
)

// ChatUseCase runs the full retrieval-and-reranking pipeline for one
// question: expand, score every variation against the recent document
// window, aggregate, select, rerank, extract snippets, then answer via the
// generator or the deterministic fallback composer. Rewriter and generator
// are optional; without them the pipeline is fully deterministic.
type ChatUseCase struct {
	store     ports.DocumentStore
	embedder  ports.Embedder
	rewriter  ports.QueryRewriter
	generator ports.AnswerGenerator

	scorer   *keywordScorer
	tunables RetrievalTunables
	logger   *slog.Logger
	now      func() time.Time
}

func NewChatUseCase(
	store ports.DocumentStore,
	embedder ports.Embedder,
	rewriter ports.QueryRewriter,
	generator ports.AnswerGenerator,
	vocab domain.Vocabulary,
	tunables RetrievalTunables,
	logger *slog.Logger,
) *ChatUseCase {
	if tunables.DocumentWindow <= 0 {
		tunables = DefaultRetrievalTunables()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		store:     store,
		embedder:  embedder,
		rewriter:  rewriter,
		generator: generator,
		scorer:    newKeywordScorer(vocab),
		tunables:  tunables,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *ChatUseCase) Ask(ctx context.Context, companyID, question string) (*domain.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if companyID == "" || question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("company id and question are required"))
	}

	docs, err := uc.store.ListRecent(ctx, companyID, uc.tunables.DocumentWindow)
	if err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	if len(docs) == 0 {
		return &domain.ChatAnswer{
			Message:    noDocumentsMessage(question),
			References: []domain.Reference{},
		}, nil
	}

	// The literal question is often the most precise signal; it always joins
	// the variation set rather than being diluted away by paraphrases.
	variations := expandQuery(ctx, uc.rewriter, question, uc.logger)
	queries := append([]string{question}, variations...)

	scored, err := aggregateScores(ctx, uc.embedder, uc.scorer, queries, docs)
	if err != nil {
		return nil, fmt.Errorf("aggregate variation scores: %w", err)
	}

	candidates := selectCandidates(scored, uc.tunables.gateFor(question))
	ranked := rerankCandidates(uc.scorer, question, candidates, uc.now())

	blocks := make([]domain.ContextBlock, 0, len(ranked))
	references := make([]domain.Reference, 0, len(ranked))
	for _, r := range ranked {
		blocks = append(blocks, domain.ContextBlock{
			DocumentID: r.Document.ID,
			Title:      r.Document.Title,
			Snippets:   uc.scorer.extractSnippets(question, r.Document.Title, r.Document.Content, contextSnippetCount),
		})
		references = append(references, domain.Reference{
			DocumentID: r.Document.ID,
			Title:      r.Document.Title,
		})
	}

	if uc.generator != nil {
		text, genErr := uc.generator.GenerateAnswer(ctx, question, blocks)
		if genErr == nil {
			return &domain.ChatAnswer{Message: text, References: references}, nil
		}
		uc.logger.Warn("answer_generation_failed", "error", genErr)
	}

	return &domain.ChatAnswer{
		Message:    uc.composeFallback(question, ranked),
		References: references,
	}, nil
}

// composeFallback builds the plain-text answer used when no generative
// backend is configured or the generation call fails.
func (uc *ChatUseCase) composeFallback(question string, ranked []domain.RerankedCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You asked: %q\n\nBased on documents:\n", question)
	for _, r := range ranked {
		snippets := uc.scorer.extractSnippets(question, r.Document.Title, r.Document.Content, fallbackSnippetCount)
		fmt.Fprintf(&b, "- %s:\n  - %s\n", r.Document.Title, strings.Join(snippets, "\n  - "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func noDocumentsMessage(question string) string {
	return fmt.Sprintf("You asked: %q\n\nNo matching documents were found for your company.", question)
}
