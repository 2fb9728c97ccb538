package config

import "time"

// qualityPresets maps each provider+quality combination to a model.
var qualityPresets = map[ProviderType]map[QualityTier]string{
	ProviderAnthropic: {
		QualityLite:   "claude-haiku-4-5-20251001",
		QualityNormal: "claude-sonnet-4-5-20250929",
		QualityMax:    "claude-opus-4-6",
	},
	ProviderOpenAI: {
		QualityLite:   "gpt-4o-mini",
		QualityNormal: "gpt-4o",
		QualityMax:    "gpt-4",
	},
	ProviderGoogle: {
		QualityLite:   "gemini-2.0-flash",
		QualityNormal: "gemini-1.5-pro",
		QualityMax:    "gemini-1.5-pro",
	},
	ProviderOllama: {
		QualityLite:   "llama3",
		QualityNormal: "llama3",
		QualityMax:    "llama3:70b",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o-mini",
		Quality:  QualityLite,
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			RequestTimeout: 90 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "data/portfolio.db",
		},
		LLM: LLMConfig{
			MaxRetries:        2,
			RetryBackoff:      500 * time.Millisecond,
			RequestsPerMinute: 60,
			Timeout:           60 * time.Second,
		},
		Context: ContextConfig{
			MaxProjects:     200,
			MaxTransactions: 500,
			MaxBaselines:    200,
			MaxDocuments:    100,
		},
		Search: SearchConfig{
			Prefilter:      true,
			TopK:           20,
			EmbeddingModel: "text-embedding-3-small",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// PresetModel returns the model for the given provider and tier.
// Returns the lite OpenAI model if the combination is not found.
func PresetModel(provider ProviderType, tier QualityTier) string {
	if tiers, ok := qualityPresets[provider]; ok {
		if model, ok := tiers[tier]; ok {
			return model
		}
	}
	return qualityPresets[ProviderOpenAI][QualityLite]
}
