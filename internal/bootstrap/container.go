package bootstrap

import (
	"log"

	"askdb-be/internal/config"
	"askdb-be/internal/controller"
	"askdb-be/internal/pkg/logger"
	"askdb-be/internal/repository/memory"
	"askdb-be/internal/service"
	"askdb-be/pkg/embedding"
	"askdb-be/pkg/llm/factory"
	"askdb-be/pkg/rag/execute"
	"askdb-be/pkg/rag/retrieve"
	"askdb-be/pkg/rag/rewrite"
	"askdb-be/pkg/rag/sqlgen"
	"askdb-be/pkg/rag/summarize"
	"askdb-be/pkg/rag/truncate"
	"askdb-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController    controller.IAskController
	SchemaController controller.ISchemaController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// Shared logger (Exposed for the server middleware)
	Logger logger.ILogger

	// DB handle (Exposed for the health check)
	DB *gorm.DB
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Stores
	vectorStore := vectorstore.NewStore(db)
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.MaxTurnPairs)
	responseCache := memory.NewResponseCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)

	// 5. Pipeline Components
	rewriter := rewrite.NewRewriter(llmProvider, sysLogger, cfg.Pipeline.RewriteTimeout, cfg.Pipeline.HistoryTurnPairs)
	retriever := retrieve.NewRetriever(embeddingProvider, vectorStore, sysLogger, cfg.Pipeline.TopK, cfg.Pipeline.EmbedTimeout)
	generator := sqlgen.NewGenerator(llmProvider, sysLogger, cfg.Pipeline.SchemaCtxMaxChars, cfg.Pipeline.SqlGenMaxAttempts, cfg.Pipeline.SqlGenTimeout)
	executor := execute.NewExecutor(db, sysLogger, cfg.Pipeline.MaxResultRows, cfg.Pipeline.ExecuteTimeout)
	summarizer := summarize.NewSummarizer(llmProvider, sysLogger, truncate.RowPolicy{
		MaxRows:  cfg.Pipeline.SummaryMaxRows,
		MaxBytes: cfg.Pipeline.SummaryMaxBytes,
		MinRows:  cfg.Pipeline.SummaryMinRows,
	}, cfg.Pipeline.SummaryMaxAttempts, cfg.Pipeline.SummaryTimeout)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.SchemaTopic, pubSub)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.App.SchemaTopic,
		embeddingProvider,
		vectorStore,
		sysLogger,
		cfg.Pipeline.EmbedTimeout,
	)

	askService := service.NewAskService(
		rewriter,
		retriever,
		generator,
		executor,
		summarizer,
		sessionRepo,
		responseCache,
		sysLogger,
		cfg.Pipeline.MaxQuestionLen,
	)

	// 7. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		AskController:    controller.NewAskController(askService),
		SchemaController: controller.NewSchemaController(publisherService, indexerService),

		IndexerService: indexerService,
		Logger:         sysLogger,
		DB:             db,
	}
}
