package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings for the server.
type Config struct {
	ServerAddr string

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	EmbeddingURL   string
	EmbeddingModel string

	AnthropicAPIKey string
	AnthropicModel  string

	OCRLanguage  string
	SofficePath  string
	TopK         int
	ChunkSize    int
	ChunkOverlap int

	ConvertTimeout time.Duration
}

// Load reads configuration from a .env file (when present) and the
// environment. Missing values fall back to local development defaults.
func Load(logger *log.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Printf("No .env file loaded: %v", err)
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   getEnvInt("QDRANT_PORT", 6333),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EmbeddingURL:   getEnv("EMBEDDING_URL", "http://localhost:8081"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", ""),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),

		OCRLanguage:  getEnv("OCR_LANGUAGE", "eng"),
		SofficePath:  getEnv("SOFFICE_PATH", "soffice"),
		TopK:         getEnvInt("QUERY_TOP_K", 0),
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),

		ConvertTimeout: getEnvDuration("CONVERT_TIMEOUT", 2*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
