package bootstrap

import (
	"log"
	"time"

	"chat-search-be/internal/config"
	"chat-search-be/internal/controller"
	"chat-search-be/internal/pkg/logger"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/internal/repository/implementation"
	"chat-search-be/internal/service"
	"chat-search-be/pkg/embedding"
	"chat-search-be/pkg/search"

	"gorm.io/gorm"
)

type Container struct {
	SearchController controller.ISearchController

	// Shared infrastructure, exposed for entry points that need it directly
	// (the indexer reuses the provider and repository without the resolver).
	EmbeddingProvider     embedding.Provider
	ChatMessageRepository contract.ChatMessageRepository
	Logger                logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	chatMessageRepo := implementation.NewChatMessageRepository(db)

	resolver := search.NewResolver(embeddingProvider, chatMessageRepo, search.Config{
		TopK:          cfg.Search.TopK,
		VectorWeight:  cfg.Search.VectorWeight,
		LexicalWeight: cfg.Search.LexicalWeight,
		CacheTTL:      time.Duration(cfg.Search.CacheTTLSeconds) * time.Second,
	}, sysLogger)

	searchService := service.NewSearchService(resolver, chatMessageRepo)

	return &Container{
		SearchController:      controller.NewSearchController(searchService, sysLogger),
		EmbeddingProvider:     embeddingProvider,
		ChatMessageRepository: chatMessageRepo,
		Logger:                sysLogger,
	}
}
