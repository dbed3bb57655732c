package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `
[database]
driver = arangodb
host = db.internal
port = 8530
username = root
password = secret
name = upi
timeout = 5s

[llm]
provider = openai
api_key = sk-test
model = gpt-4o-mini

[parser]
llm_enrich = true
intents = search, count , describe

[search]
max_results = 3
facet_fields = type,owner

[server]
port = 9000
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_INI(t *testing.T) {
	path := writeConfig(t, "config.ini", sampleINI)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "arangodb", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 8530, cfg.Database.Port)
	assert.Equal(t, "root", cfg.Database.Username)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "upi", cfg.Database.Name)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "http://db.internal:8530", cfg.Database.Address())

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.True(t, cfg.Parser.LLMEnrich)
	assert.Equal(t, []string{"search", "count", "describe"}, cfg.Parser.Intents)

	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, []string{"type", "owner"}, cfg.Search.FacetFields)
	assert.Equal(t, 9000, cfg.Server.Port)

	// untouched sections keep their defaults
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, 100, cfg.History.MaxEntries)
	assert.Equal(t, "UPI Search> ", cfg.Search.Prompt)
	assert.Equal(t, DefaultAzureAPIVersion, cfg.LLM.APIVersion)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.ini", sampleINI)
	t.Setenv("UPI_LLM_API_KEY", "sk-from-env")
	t.Setenv("UPI_DATABASE_DRIVER", "neo4j")
	t.Setenv("UPI_DATABASE_PORT", "0")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "neo4j", cfg.Database.Driver)
	assert.Equal(t, 7687, cfg.Database.Port)
	assert.Equal(t, "bolt://db.internal:7687", cfg.Database.Address())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	path := writeConfig(t, "config.ini", "[database]\ndriver = mongo\n[llm]\napi_key = k\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: "arangodb"},
		LLM:      LLMConfig{Provider: "openai", APIKey: "k"},
		History:  HistoryConfig{Backend: "memory"},
		Server:   ServerConfig{Port: 8000},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "graphql without endpoint",
			mutate:  func(c *Config) { c.Database.Driver = "graphql" },
			wantErr: "database.endpoint",
		},
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.LLM.APIKey = "" },
			wantErr: "llm.api_key",
		},
		{
			name:    "azure without endpoint",
			mutate:  func(c *Config) { c.LLM.Provider = "azure" },
			wantErr: "llm.endpoint",
		},
		{
			name:    "compatible without endpoint",
			mutate:  func(c *Config) { c.LLM.Provider = "compatible" },
			wantErr: "llm.endpoint",
		},
		{
			name:    "bedrock without region",
			mutate:  func(c *Config) { c.LLM.Provider = "bedrock" },
			wantErr: "llm.region",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "palm" },
			wantErr: "llm.provider",
		},
		{
			name:    "redis history without addr",
			mutate:  func(c *Config) { c.History.Backend = "redis" },
			wantErr: "history.redis_addr",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
