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
	Ai       AIConfig
	Pipeline PipelineConfig
	Session  SessionConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string
	SchemaTopic        string // Topic name for schema indexing jobs
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama", "gemini"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	GeminiAPIKey      string
}

// PipelineConfig bounds every stage of the question-answering flow.
type PipelineConfig struct {
	MaxQuestionLen     int
	TopK               int
	SchemaCtxMaxChars  int
	MaxResultRows      int
	SummaryMaxRows     int
	SummaryMaxBytes    int
	SummaryMinRows     int
	SqlGenMaxAttempts  int
	SummaryMaxAttempts int
	RewriteTimeout     time.Duration
	EmbedTimeout       time.Duration
	SqlGenTimeout      time.Duration
	ExecuteTimeout     time.Duration
	SummaryTimeout     time.Duration
	HistoryTurnPairs   int
}

type SessionConfig struct {
	TTL          time.Duration
	MaxTurnPairs int
}

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			SchemaTopic:        getEnv("EMBED_SCHEMA_DOC_TOPIC_NAME", "EMBED_SCHEMA_DOC"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLife:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			MaxQuestionLen:     getEnvAsInt("PIPELINE_MAX_QUESTION_LEN", 500),
			TopK:               getEnvAsInt("PIPELINE_TOP_K", 3),
			SchemaCtxMaxChars:  getEnvAsInt("PIPELINE_SCHEMA_CTX_MAX_CHARS", 6000),
			MaxResultRows:      getEnvAsInt("PIPELINE_MAX_RESULT_ROWS", 100),
			SummaryMaxRows:     getEnvAsInt("PIPELINE_SUMMARY_MAX_ROWS", 20),
			SummaryMaxBytes:    getEnvAsInt("PIPELINE_SUMMARY_MAX_BYTES", 4000),
			SummaryMinRows:     getEnvAsInt("PIPELINE_SUMMARY_MIN_ROWS", 3),
			SqlGenMaxAttempts:  getEnvAsInt("PIPELINE_SQLGEN_MAX_ATTEMPTS", 3),
			SummaryMaxAttempts: getEnvAsInt("PIPELINE_SUMMARY_MAX_ATTEMPTS", 2),
			RewriteTimeout:     getEnvAsDuration("PIPELINE_REWRITE_TIMEOUT", 20*time.Second),
			EmbedTimeout:       getEnvAsDuration("PIPELINE_EMBED_TIMEOUT", 15*time.Second),
			SqlGenTimeout:      getEnvAsDuration("PIPELINE_SQLGEN_TIMEOUT", 45*time.Second),
			ExecuteTimeout:     getEnvAsDuration("PIPELINE_EXECUTE_TIMEOUT", 30*time.Second),
			SummaryTimeout:     getEnvAsDuration("PIPELINE_SUMMARY_TIMEOUT", 45*time.Second),
			HistoryTurnPairs:   getEnvAsInt("PIPELINE_HISTORY_TURN_PAIRS", 3),
		},
		Session: SessionConfig{
			TTL:          getEnvAsDuration("SESSION_TTL", 1*time.Hour),
			MaxTurnPairs: getEnvAsInt("SESSION_MAX_TURN_PAIRS", 10),
		},
		Cache: CacheConfig{
			TTL:        getEnvAsDuration("CACHE_TTL", 30*time.Minute),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 500),
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
