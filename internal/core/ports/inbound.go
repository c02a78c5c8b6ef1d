package ports

import (
	"context"
	"io"

	"github.com/dkravets/docqa/internal/core/domain"
)

// ChatService answers a question against one company's document pool.
type ChatService interface {
	Ask(ctx context.Context, companyID, question string) (*domain.ChatAnswer, error)
}

// IngestRequest describes one document to create. Either Content or File may
// be set; Title and CompanyID are required.
type IngestRequest struct {
	CompanyID string
	Title     string
	Content   string
	Filename  string
	MimeType  string
	File      io.Reader
}

// DocumentIngestor is the inbound contract for document creation.
type DocumentIngestor interface {
	Upload(ctx context.Context, req IngestRequest) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous embedding.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
