package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "config.ini"

// Default chat models per provider family.
const (
	DefaultModel        = "gpt-3.5-turbo"
	DefaultBedrockModel = "anthropic.claude-3-haiku-20240307-v1:0"
)

// DefaultAzureAPIVersion is the oldest Azure OpenAI API version that accepts tools.
const DefaultAzureAPIVersion = "2024-02-01"

// EnvPrefix prefixes every environment override, e.g. UPI_LLM_API_KEY.
const EnvPrefix = "UPI"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Search   SearchConfig   `mapstructure:"search"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Driver     string        `mapstructure:"driver"` // arangodb, neo4j, graphql
	Endpoint   string        `mapstructure:"endpoint"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	Name       string        `mapstructure:"name"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, azure, compatible, bedrock
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	Deployment  string        `mapstructure:"deployment"`
	APIVersion  string        `mapstructure:"api_version"`
	Region      string        `mapstructure:"region"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
}

type ParserConfig struct {
	LLMEnrich bool     `mapstructure:"llm_enrich"`
	Intents   []string `mapstructure:"intents"`
	Keywords  int      `mapstructure:"keywords"`
}

type SearchConfig struct {
	MaxResults  int      `mapstructure:"max_results"`
	MaxFacets   int      `mapstructure:"max_facets"`
	FacetFields []string `mapstructure:"facet_fields"`
	Prompt      string   `mapstructure:"prompt"`
}

type HistoryConfig struct {
	Backend       string `mapstructure:"backend"` // memory, redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisKey      string `mapstructure:"redis_key"`
	MaxEntries    int    `mapstructure:"max_entries"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Env   string `mapstructure:"env"`   // local, dev, prod
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// LoadConfig reads the config file at path (INI unless the extension says
// otherwise), then applies UPI_* environment overrides and defaults.
// An empty path falls back to DefaultPath when that file exists.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" && fileExists(DefaultPath) {
		path = DefaultPath
	}
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("ini")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "arangodb")
	v.SetDefault("database.endpoint", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.timeout", 30*time.Second)
	v.SetDefault("database.max_retries", 2)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.deployment", "")
	v.SetDefault("llm.api_version", DefaultAzureAPIVersion)
	v.SetDefault("llm.region", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 1000)

	v.SetDefault("parser.llm_enrich", false)
	v.SetDefault("parser.intents", []string{"search", "count", "describe"})
	v.SetDefault("parser.keywords", 5)

	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.max_facets", 5)
	v.SetDefault("search.facet_fields", []string{"type", "category", "label"})
	v.SetDefault("search.prompt", "UPI Search> ")

	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.redis_addr", "")
	v.SetDefault("history.redis_password", "")
	v.SetDefault("history.redis_key", "upisearch:history")
	v.SetDefault("history.max_entries", 100)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("logging.env", "local")
	v.SetDefault("logging.level", "")
}

// ApplyDefaults normalizes list values and fills the database port and name
// for the selected driver.
func (c *Config) ApplyDefaults() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))

	switch c.Database.Driver {
	case "arangodb":
		if c.Database.Port == 0 {
			c.Database.Port = 8529
		}
		if c.Database.Name == "" {
			c.Database.Name = "_system"
		}
	case "neo4j":
		if c.Database.Port == 0 {
			c.Database.Port = 7687
		}
		if c.Database.Name == "" {
			c.Database.Name = "neo4j"
		}
	}
	if c.LLM.Model == "" {
		if c.LLM.Provider == "bedrock" {
			c.LLM.Model = DefaultBedrockModel
		} else {
			c.LLM.Model = DefaultModel
		}
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Search.MaxFacets < 0 {
		c.Search.MaxFacets = 0
	}
	if c.Search.Prompt == "" {
		c.Search.Prompt = "UPI Search> "
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = 100
	}
	if c.Parser.Keywords <= 0 {
		c.Parser.Keywords = 5
	}
	c.Parser.Intents = cleanList(c.Parser.Intents)
	c.Search.FacetFields = cleanList(c.Search.FacetFields)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "arangodb", "neo4j":
	case "graphql":
		if c.Database.Endpoint == "" {
			return errors.New("database.endpoint is required for the graphql driver")
		}
	default:
		return fmt.Errorf("database.driver must be arangodb, neo4j or graphql, got %q", c.Database.Driver)
	}

	switch c.LLM.Provider {
	case "openai", "azure":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider)
		}
		if c.LLM.Provider == "azure" && c.LLM.Endpoint == "" {
			return errors.New("llm.endpoint is required for provider \"azure\"")
		}
	case "compatible":
		if c.LLM.Endpoint == "" {
			return errors.New("llm.endpoint is required for provider \"compatible\"")
		}
	case "bedrock":
		if c.LLM.Region == "" {
			return errors.New("llm.region is required for provider \"bedrock\"")
		}
	default:
		return fmt.Errorf("llm.provider must be openai, azure, compatible or bedrock, got %q", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}

	switch c.History.Backend {
	case "memory":
	case "redis":
		if c.History.RedisAddr == "" {
			return errors.New("history.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("history.backend must be memory or redis, got %q", c.History.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

// Address returns the database endpoint, built from host and port when no
// explicit endpoint is configured.
func (d DatabaseConfig) Address() string {
	if d.Endpoint != "" {
		return d.Endpoint
	}
	switch d.Driver {
	case "neo4j":
		return fmt.Sprintf("bolt://%s:%d", d.Host, d.Port)
	default:
		return fmt.Sprintf("http://%s:%d", d.Host, d.Port)
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
