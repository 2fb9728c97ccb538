package config

import "time"

// QualityTier controls the model selection and trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
)

// DatabaseDriver selects the portfolio store backend.
type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

// Config is the top-level portfolioai configuration, corresponding to .portfolioai.yml.
type Config struct {
	Provider  ProviderType   `yaml:"provider" koanf:"provider"`
	Model     string         `yaml:"model" koanf:"model"`
	Quality   QualityTier    `yaml:"quality" koanf:"quality"`
	Server    ServerConfig   `yaml:"server" koanf:"server"`
	Database  DatabaseConfig `yaml:"database" koanf:"database"`
	LLM       LLMConfig      `yaml:"llm" koanf:"llm"`
	Context   ContextConfig  `yaml:"context" koanf:"context"`
	Search    SearchConfig   `yaml:"search" koanf:"search"`
	Log       LogConfig      `yaml:"log" koanf:"log"`
	SentryDSN string         `yaml:"sentry_dsn" koanf:"sentry_dsn"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// DatabaseConfig points at the portfolio store.
type DatabaseConfig struct {
	Driver DatabaseDriver `yaml:"driver" koanf:"driver"`
	DSN    string         `yaml:"dsn" koanf:"dsn"`
}

// LLMConfig bounds how the completion provider is called.
type LLMConfig struct {
	MaxRetries        int           `yaml:"max_retries" koanf:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" koanf:"retry_backoff"`
	RequestsPerMinute int           `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout" koanf:"timeout"`
}

// ContextConfig caps how much portfolio data is placed into a prompt.
type ContextConfig struct {
	MaxProjects     int `yaml:"max_projects" koanf:"max_projects"`
	MaxTransactions int `yaml:"max_transactions" koanf:"max_transactions"`
	MaxBaselines    int `yaml:"max_baselines" koanf:"max_baselines"`
	MaxDocuments    int `yaml:"max_documents" koanf:"max_documents"`
}

// SearchConfig controls the document search pipeline.
type SearchConfig struct {
	// Prefilter applies request filters before the prompt is built. When
	// false, filters are only described to the model.
	Prefilter         bool         `yaml:"prefilter" koanf:"prefilter"`
	TopK              int          `yaml:"top_k" koanf:"top_k"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
