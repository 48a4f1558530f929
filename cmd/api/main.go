package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"carebot/internal/assembler"
	"carebot/internal/config"
	"carebot/internal/http"
	"carebot/internal/ingest"
	"carebot/internal/intent"
	"carebot/internal/llm"
	"carebot/internal/memory"
	"carebot/internal/retrieval"
	"carebot/internal/service"
	"carebot/internal/storage"
)

// storeStats adapts the storage repos to the diagnostic endpoint.
type storeStats struct {
	vectors *storage.VectorRepo
	index   *storage.IndexRepo
}

func (s *storeStats) ChunkCount(ctx context.Context) (int, error) { return s.vectors.Count(ctx) }
func (s *storeStats) TermCount(ctx context.Context) (int, error)  { return s.index.TermCount(ctx) }

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	vectorRepo := storage.NewVectorRepo(db)
	indexRepo := storage.NewIndexRepo(db)
	messageRepo := storage.NewMessageRepo(db)
	syncRepo := storage.NewSyncRepo(db)

	ctx := context.Background()

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDim)
	testEmbeddings, err := embedder.EmbedDocuments(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingDim {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingDim, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingDim)

	// Create ingestion pipeline over the knowledge directory
	source := ingest.NewFSSource(cfg.KnowledgeDir)
	pipeline := ingest.NewPipeline(source, vectorRepo, indexRepo, syncRepo, embedder, cfg.ChunkSize, cfg.ChunkOverlap)

	// Create LLM client (external service layer)
	llmClient := llm.NewClientWithTimeout(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.GenerateTimeout)

	// Wire the chat turn pipeline
	conversations := memory.New(messageRepo, cfg.HistoryCacheTTL)
	retriever := retrieval.NewRetriever(embedder, vectorRepo, indexRepo, cfg.EmbedTimeout)
	contextBuilder := assembler.New(conversations, retriever, cfg.ContextTokenBudget)
	classifier := intent.NewClassifier(llmClient)
	chatService := service.NewChatService(llmClient, classifier, contextBuilder, conversations)
	slog.Info("Chat service initialized")

	// Create router with dependencies
	deps := &http.Deps{
		ChatService: chatService,
		Uploader:    pipeline,
		Resyncer:    pipeline,
		Stats:       &storeStats{vectors: vectorRepo, index: indexRepo},
		DB:          db,
	}
	router := http.NewRouter(deps)

	// Start background ingestion after the router is ready, then re-sync
	// on a ticker to pick up new and modified documents.
	go func() {
		syncCtx := context.Background()
		slog.Info("Starting background knowledge sync", "dir", cfg.KnowledgeDir)
		if _, err := pipeline.SyncAll(syncCtx); err != nil {
			slog.Error("Knowledge sync completed with errors", "error", err)
		}

		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := pipeline.SyncAll(syncCtx); err != nil {
				slog.Error("Knowledge re-sync completed with errors", "error", err)
			}
		}
	}()

	// Expired-message janitor
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			purged, err := conversations.PurgeExpired(context.Background())
			if err != nil {
				slog.Warn("Failed to purge expired messages", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("Purged expired messages", "count", purged)
			}
		}
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
