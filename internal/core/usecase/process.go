package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/core/ports"
)

// ProcessDocumentUseCase computes and persists a document's embedding:
// resolve the text (explicit content, then extracted file text, then the
// title), chunk it, embed every chunk, and store the component-wise mean as
// the document vector.
type ProcessDocumentUseCase struct {
	store     ports.DocumentStore
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
}

func NewProcessDocumentUseCase(
	store ports.DocumentStore,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.embedDocument(ctx, documentID); err != nil {
		if failErr := uc.store.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) embedDocument(ctx context.Context, documentID string) error {
	doc, err := uc.store.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}

	text, err := uc.resolveText(ctx, doc)
	if err != nil {
		return err
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	embedding := domain.AverageVectors(vectors)
	if err := uc.store.SaveEmbedding(ctx, doc.ID, text, embedding); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// resolveText prefers explicit content, then extracted file text, then the
// title, so every document ends up with a representative vector.
func (uc *ProcessDocumentUseCase) resolveText(ctx context.Context, doc *domain.Document) (string, error) {
	if text := strings.TrimSpace(doc.Content); text != "" {
		return text, nil
	}
	if doc.StoragePath != "" {
		text, err := uc.extractor.Extract(ctx, doc)
		if err != nil {
			return "", fmt.Errorf("extract text: %w", err)
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title, nil
	}
	return "", domain.WrapError(domain.ErrInvalidInput, "resolve text", errors.New("document has no text"))
}
