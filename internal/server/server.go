package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"docuchat/config"
	"docuchat/internal/convert"
	"docuchat/internal/db"
	"docuchat/internal/handlers"
	"docuchat/internal/ocr"
	"docuchat/internal/repositories"
	"docuchat/internal/routes"
	"docuchat/internal/services"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires the full pipeline and returns a ready-to-run HTTP server.
func NewServer() (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)
	cfg := config.Load(logger)

	vectorRepo, chatRepo, err := initializeRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Stages
	generator := services.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	embedder := services.NewHTTPEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)

	extraction := services.NewExtractionService(
		ocr.NewFitzRenderer(),
		ocr.NewTesseractEngine(cfg.OCRLanguage),
		convert.NewLibreOfficeConverter(cfg.SofficePath, cfg.ConvertTimeout),
		logger,
	)
	classifier := services.NewClassifierService(generator, logger)
	naming := services.NewNamingService(generator, logger)
	collections := services.NewCollectionService(vectorRepo, logger)

	ingestion := services.NewIngestionService(
		extraction,
		classifier,
		naming,
		collections,
		services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		services.NewKeywordExtractor(),
		embedder,
		vectorRepo,
		chatRepo,
		logger,
	)
	query := services.NewQueryService(collections, embedder, generator, vectorRepo, logger, cfg.TopK)

	h := &routes.Handlers{
		Health:     handlers.NewHealthHandler(vectorRepo, chatRepo, logger),
		Document:   handlers.NewDocumentHandler(ingestion, chatRepo, logger),
		Chat:       handlers.NewChatHandler(query, chatRepo, logger),
		Collection: handlers.NewCollectionHandler(collections, chatRepo, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	logger.Printf("Server configured on %s", cfg.ServerAddr)

	return &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: corsMiddleware(router),
	}, nil
}

// initializeRepositories connects to Redis and Qdrant and verifies both.
func initializeRepositories(cfg *config.Config, logger *log.Logger) (repositories.VectorRepository, repositories.ChatRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := db.DefaultRedisConfig()
	redisConfig.Host = cfg.RedisHost
	redisConfig.Port = cfg.RedisPort
	redisConfig.Password = cfg.RedisPassword
	redisConfig.DB = cfg.RedisDB

	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)
	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("Redis connection failed: %v", err)
		logger.Println("Hint: ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil, nil, err
	}
	logger.Println("Redis connected")

	qdrantClient := db.NewQdrantClient(db.QdrantConfig{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
	})
	logger.Printf("Connecting to Qdrant: %s:%d", cfg.QdrantHost, cfg.QdrantPort)
	if err := qdrantClient.Ready(ctx); err != nil {
		logger.Printf("Qdrant connection failed: %v", err)
		logger.Println("Hint: ensure Qdrant is running (docker run -d -p 6333:6333 qdrant/qdrant)")
		return nil, nil, err
	}
	logger.Println("Qdrant connected")

	vectorRepo := repositories.NewQdrantVectorRepository(qdrantClient, logger)
	chatRepo := repositories.NewRedisChatRepository(redisClient.GetClient())

	return vectorRepo, chatRepo, nil
}
