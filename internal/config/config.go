package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type AnalyzerBackend string

const (
	AnalyzerMock   AnalyzerBackend = "mock"
	AnalyzerOpenAI AnalyzerBackend = "openai"
	AnalyzerGemini AnalyzerBackend = "gemini"
)

type Config struct {
	Port string

	AnalyzerBackend AnalyzerBackend
	OpenAIKey       string
	OpenAIModel     string

	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	StorageBackend string // "memory", "sqlite" or "firestore"
	SQLitePath     string

	// LocalUser is the identity every bearer token resolves to when no real
	// identity provider is wired (local mode).
	LocalUser string

	SessionTTL time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

// Load reads all env vars and builds the config
func Load() *Config {
	cfg := &Config{
		Port: getEnv("TRIAGE_PORT", "8080"),

		AnalyzerBackend: AnalyzerBackend(getEnv("TRIAGE_ANALYZER", "mock")),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("TRIAGE_OPENAI_MODEL", "gpt-4o"),

		GCPProjectID: getEnv("TRIAGE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("TRIAGE_GCP_LOCATION", "us-central1"),
		GeminiModel:  getEnv("TRIAGE_GEMINI_MODEL", "gemini-2.5-flash"),

		StorageBackend: getEnv("TRIAGE_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("TRIAGE_SQLITE_PATH", "./triage.db"),

		LocalUser: getEnv("TRIAGE_LOCAL_USER", "local-user"),

		SessionTTL: getDurationEnv("TRIAGE_SESSION_TTL", 30*time.Minute),
	}

	switch cfg.AnalyzerBackend {
	case AnalyzerMock, AnalyzerOpenAI, AnalyzerGemini:
	default:
		log.Fatalf("unknown TRIAGE_ANALYZER %q", cfg.AnalyzerBackend)
	}

	if cfg.AnalyzerBackend == AnalyzerOpenAI && cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY must be set for the openai analyzer")
	}
	if cfg.AnalyzerBackend == AnalyzerGemini && cfg.GCPProjectID == "" {
		log.Fatal("TRIAGE_GCP_PROJECT must be set for the gemini analyzer")
	}
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("TRIAGE_GCP_PROJECT must be set for the firestore backend")
	}

	return cfg
}
