package model

import "time"

// ================ Config ================
type ActionModelConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	Mode        string  `envconfig:"LLM_MODE" default:"direct"`
	Model       string  `envconfig:"ACTION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ACTION_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"ACTION_TEMPERATURE" default:"0.2"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY"`
	BaseURL string `envconfig:"OPENAI_BASE_URL"`
	Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

type AgentConfig struct {
	MaxToolCalls int `envconfig:"AGENT_MAX_TOOL_CALLS" default:"6"`
}

type VisionConfig struct {
	Model string `envconfig:"VISION_MODEL" default:"gemini-2.5-flash"`
}

type CatalogConfig struct {
	Backend        string        `envconfig:"CATALOG_BACKEND" default:"memory"`
	ParquetPath    string        `envconfig:"CATALOG_PARQUET_PATH"`
	EmbeddingModel string        `envconfig:"EMBEDDING_MODEL" default:"embedding-001"`
	CacheTTL       time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`
}

type SecretConfig struct {
	ProjectID  string `envconfig:"PROJECT_ID"`
	SecretName string `envconfig:"ALLOYDB_SECRET_NAME"`
	// Password bypasses Secret Manager when set.
	Password string `envconfig:"ALLOYDB_PASSWORD"`
}
