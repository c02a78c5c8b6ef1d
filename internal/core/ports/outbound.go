package ports

import (
	"context"
	"io"

	"github.com/dkravets/docqa/internal/core/domain"
)

// DocumentStore persists documents and serves the recent window retrieval
// reads from.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListRecent(ctx context.Context, companyID string, limit int) ([]domain.Document, error)
	SaveEmbedding(ctx context.Context, id, content string, embedding []float32) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ObjectStorage stores raw uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries embed requests from the API to the worker.
type MessageQueue interface {
	PublishDocumentEmbed(ctx context.Context, documentID string) error
	SubscribeDocumentEmbed(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor pulls plain text out of a stored source file.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Embedder builds vectors for document chunks and query text. The default
// implementation is a local deterministic hashing embedder; a remote backend
// can be substituted, which is why the calls carry a context.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits long text into bounded, overlapping segments.
type Chunker interface {
	Split(text string) []string
}

// QueryRewriter asks a language model for paraphrases of a question and
// returns the raw completion text. Parsing and all fallbacks live in the
// pipeline, so implementations only report the call outcome.
type QueryRewriter interface {
	Rewrite(ctx context.Context, question string) (string, error)
}

// AnswerGenerator composes the final answer from ranked context blocks.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, blocks []domain.ContextBlock) (string, error)
}
