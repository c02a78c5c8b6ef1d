package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/core/ports"
)

// IngestDocumentUseCase creates a document, stores the raw file if one was
// uploaded, and hands the id to the embed worker via the queue.
type IngestDocumentUseCase struct {
	store   ports.DocumentStore
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	store ports.DocumentStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		store:   store,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestDocumentUseCase) Upload(ctx context.Context, req ports.IngestRequest) (*domain.Document, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.CompanyID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("title and company id are required"))
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	var storageKey string
	if req.File != nil {
		storageKey = fmt.Sprintf("%s_%s", id, sanitizeFilename(req.Filename))
		if err := uc.storage.Save(ctx, storageKey, req.File); err != nil {
			return nil, fmt.Errorf("save to object storage: %w", err)
		}
	}

	doc := &domain.Document{
		ID:          id,
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Content:     req.Content,
		MimeType:    req.MimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if err := uc.queue.PublishDocumentEmbed(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish embed event: %w", err)
	}

	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
