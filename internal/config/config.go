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
	Upstream UpstreamConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	StatusTopic        string
}

type UpstreamConfig struct {
	BaseURL       string
	UploadTimeout time.Duration
	ChatTimeout   time.Duration
}

type AIConfig struct {
	EmbeddingModel string
	ChatModel      string
	ChatPrompt     string
	RagTemplate    string
	TopK           int
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			StatusTopic:        getEnv("WORKBENCH_STATUS_TOPIC_NAME", "WORKBENCH_STATUS"),
		},
		Upstream: UpstreamConfig{
			BaseURL:       getEnv("ANALYSIS_API_BASE_URL", "http://localhost:8000"),
			UploadTimeout: getEnvAsDuration("UPSTREAM_UPLOAD_TIMEOUT", 30*time.Second),
			ChatTimeout:   getEnvAsDuration("UPSTREAM_CHAT_TIMEOUT", 5*time.Minute),
		},
		Ai: AIConfig{
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
			ChatModel:      getEnv("CHAT_MODEL", "llama3.1"),
			ChatPrompt: getEnv("CHAT_PROMPT",
				"You are a helpful AI assistant that answers questions based on the provided documents."),
			RagTemplate: getEnv("RAG_TEMPLATE", "biophysics"),
			TopK:        getEnvAsInt("RAG_TOP_K", 5),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
