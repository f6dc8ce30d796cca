package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads .env from the current directory and sets env vars.
// Safe to call multiple times; existing env vars are not overwritten.
func Load() error {
	return godotenv.Load()
}

// AuditKey returns the API key used to gate protected routes.
func AuditKey() string {
	return os.Getenv("AUDIT_KEY")
}

// GeminiAPIKey returns the Google Gemini API key.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// GeminiModel returns the model used for semantic verification.
func GeminiModel() string {
	return os.Getenv("GEMINI_MODEL")
}

// RunsDir returns the directory for audit run artifacts.
func RunsDir() string {
	if v := os.Getenv("AUDIT_RUNS_DIR"); v != "" {
		return v
	}
	return "data/runs"
}

// RulesFile returns the path of the YAML rule book. Empty means the
// built-in defaults.
func RulesFile() string {
	return os.Getenv("AUDIT_RULES_FILE")
}

// RetrievalURL returns the base URL of the external retrieval service.
// Empty means no external retriever is configured.
func RetrievalURL() string {
	return os.Getenv("AUDIT_RETRIEVAL_URL")
}

// RetrievalTopK returns how many passages to request per corpus.
func RetrievalTopK() int {
	return positiveInt("AUDIT_RETRIEVAL_TOPK", 5)
}

// SemanticWorkers returns the size of the semantic evaluation pool.
func SemanticWorkers() int {
	return positiveInt("AUDIT_SEMANTIC_WORKERS", 3)
}

// RunsIndexLimit returns the max number of runs kept in index.json.
func RunsIndexLimit() int {
	return positiveInt("AUDIT_RUNS_INDEX_LIMIT", 50)
}

// RunsMax returns the maximum number of run artifacts to retain.
// If unset or invalid, defaults to 50. Set to 0 to disable pruning.
func RunsMax() int {
	if v := os.Getenv("AUDIT_RUNS_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return 50
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
