package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Rag      RAGConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens issued by the external identity
	// service. Empty disables verification and sessions run anonymous.
	JWTSecret string
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama"
	OllamaBaseURL      string
	OllamaEmbedModel   string
	EmbeddingDimension int
	LLMProvider        string // "ollama"
	LLMModel           string // e.g. "llama3", "qwen2.5"
	LLMTemperature     float64
	LLMMaxTokens       int // 0 lets the model run to its own limit
}

type RAGConfig struct {
	DocsDir           string
	ChunkSize         int
	ChunkOverlap      int
	TopK              int
	CutoffScore       float64
	MaxPassageChars   int
	PromptCharBudget  int
	HistoryWindow     int
	StreamIdleTimeout time.Duration
	FragmentBuffer    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:   getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.4),
			LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 0),
		},
		Rag: RAGConfig{
			DocsDir:           getEnv("CORPUS_DOCS_DIR", "./docs"),
			ChunkSize:         getEnvAsInt("CORPUS_CHUNK_SIZE", 2400),
			ChunkOverlap:      getEnvAsInt("CORPUS_CHUNK_OVERLAP", 400),
			TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 4),
			CutoffScore:       getEnvAsFloat("RETRIEVAL_CUTOFF_SCORE", 0.35),
			MaxPassageChars:   getEnvAsInt("RETRIEVAL_MAX_PASSAGE_CHARS", 800),
			PromptCharBudget:  getEnvAsInt("PROMPT_CHAR_BUDGET", 24000),
			HistoryWindow:     getEnvAsInt("CHAT_HISTORY_WINDOW", 20),
			StreamIdleTimeout: getEnvAsDuration("STREAM_IDLE_TIMEOUT", 60*time.Second),
			FragmentBuffer:    getEnvAsInt("STREAM_FRAGMENT_BUFFER", 64),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
