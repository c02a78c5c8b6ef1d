package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkravets/docqa/internal/config"
	"github.com/dkravets/docqa/internal/core/ports"
	"github.com/dkravets/docqa/internal/core/usecase"
	"github.com/dkravets/docqa/internal/infrastructure/chunking"
	"github.com/dkravets/docqa/internal/infrastructure/embedding/embcache"
	"github.com/dkravets/docqa/internal/infrastructure/embedding/hashed"
	"github.com/dkravets/docqa/internal/infrastructure/extractor"
	"github.com/dkravets/docqa/internal/infrastructure/llm/groq"
	"github.com/dkravets/docqa/internal/infrastructure/queue/nats"
	"github.com/dkravets/docqa/internal/infrastructure/repository/postgres"
	"github.com/dkravets/docqa/internal/infrastructure/resilience"
	"github.com/dkravets/docqa/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentStore

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	ChatUC    ports.ChatService

	closeFn func()
}

type Options struct {
	Logger *slog.Logger

	// EmbedCacheCounter receives hit/miss counts when the Redis cache is
	// configured. Nil disables counting.
	EmbedCacheCounter *prometheus.CounterVec
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.PublishConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var embedder ports.Embedder = hashed.New()
	var redisStore *embcache.RedisStore
	if cfg.RedisAddr != "" {
		redisStore, err = embcache.NewRedisStore(cfg.RedisAddr, cfg.EmbedCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("init embedding cache: %w", err)
		}
		embedder = embcache.New(embedder, redisStore, opts.EmbedCacheCounter, logger)
	}

	var rewriter ports.QueryRewriter
	var generator ports.AnswerGenerator
	if cfg.LLMAPIKey != "" {
		llmExecutor := resilience.NewExecutor(resilience.LLMConfig())
		llmClient := groq.New(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, llmExecutor)
		rewriter = groq.NewRewriter(llmClient)
		generator = groq.NewGenerator(llmClient)
	}

	vocab, err := config.LoadVocabulary(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	tunables := usecase.RetrievalTunables{
		ShortQueryWords:          cfg.ShortQueryWords,
		ShortSimilarityThreshold: cfg.ShortSimilarityThreshold,
		LongSimilarityThreshold:  cfg.LongSimilarityThreshold,
		ShortKeywordThreshold:    cfg.ShortKeywordThreshold,
		LongKeywordThreshold:     cfg.LongKeywordThreshold,
		ShortSearchDepth:         cfg.ShortSearchDepth,
		LongSearchDepth:          cfg.LongSearchDepth,
		DocumentWindow:           cfg.DocumentWindow,
	}

	chunker := chunking.NewSplitter(cfg.ChunkMaxLen, cfg.ChunkOverlap)
	textExtractor := extractor.New(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, chunker, embedder)
	chatUC := usecase.NewChatUseCase(repo, embedder, rewriter, generator, vocab, tunables, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ChatUC:    chatUC,

		closeFn: func() {
			queue.Close()
			if redisStore != nil {
				redisStore.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
