package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, QualityLite, cfg.Quality)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.True(t, cfg.Search.Prefilter)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.portfolioai.yml")

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-sonnet-4-5-20250929"
	original.Quality = QualityNormal
	original.Database.DSN = filepath.Join(dir, "p.db")
	original.LLM.RetryBackoff = 750 * time.Millisecond
	original.Server.AllowedOrigins = []string{"https://portfolio.example.com"}

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Provider, loaded.Provider)
	assert.Equal(t, original.Model, loaded.Model)
	assert.Equal(t, original.Quality, loaded.Quality)
	assert.Equal(t, original.Database.DSN, loaded.Database.DSN)
	assert.Equal(t, original.LLM.RetryBackoff, loaded.LLM.RetryBackoff)
	assert.Equal(t, original.Server.AllowedOrigins, loaded.Server.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PORTFOLIOAI_PROVIDER", "anthropic")
	t.Setenv("PORTFOLIOAI_SERVER__PORT", "9090")
	t.Setenv("PORTFOLIOAI_LLM__MAX_RETRIES", "0")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, loaded.Provider)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, 0, loaded.LLM.MaxRetries)
}

func TestLoadPicksPresetModelForProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, os.WriteFile(path, []byte("provider: anthropic\nquality: max\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-6", cfg.Model)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORTFOLIOAI_TEST_DOTENV=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PORTFOLIOAI_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("PORTFOLIOAI_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }},
		{"negative rpm", func(c *Config) { c.LLM.RequestsPerMinute = -5 }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"bad embedding provider", func(c *Config) { c.Search.EmbeddingProvider = ProviderGoogle }},
		{"zero context limit", func(c *Config) { c.Context.MaxProjects = 0 }},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPresetModel(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", PresetModel(ProviderAnthropic, QualityLite))
	assert.Equal(t, "gpt-4", PresetModel(ProviderOpenAI, QualityMax))
	// Unknown combination falls back.
	assert.Equal(t, "gpt-4o-mini", PresetModel("unknown", QualityLite))
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, APIKeyEnvVar(tt.provider))
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim(" a , b ,c "))
	assert.Nil(t, splitAndTrim("  ,  , "))
}
