package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Answer    AnswerConfig    `yaml:"answer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"` // generative answers hold the connection open
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig holds document corpus settings.
type CorpusConfig struct {
	DataDir     string   `yaml:"data_dir"`
	Patterns    []string `yaml:"patterns"` // glob patterns, default: *.txt and *.md
	Parallelism int      `yaml:"read_parallelism"`
}

// IndexConfig holds index persistence and build settings.
type IndexConfig struct {
	Path         string `yaml:"path"` // default: <data_dir>/index.bin
	EmbedChunk   int    `yaml:"embed_chunk"`
	BuildWorkers int    `yaml:"build_workers"`
}

// EmbeddingConfig holds vectorizer settings.
type EmbeddingConfig struct {
	Model  string       `yaml:"model"` // tfidf, openai (default: tfidf)
	TFIDF  TFIDFConfig  `yaml:"tfidf"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// TFIDFConfig holds TF-IDF vocabulary settings.
type TFIDFConfig struct {
	MaxFeatures int     `yaml:"max_features"`
	MaxDocRatio float64 `yaml:"max_doc_ratio"`
	MinDocCount int     `yaml:"min_doc_count"`
}

// OpenAIConfig holds OpenAI embedding provider settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Driver  string       `yaml:"driver"`  // none, redis, badger (default: none)
	TTLSec  int          `yaml:"ttl_sec"` // 0 = no expiry
	LRUSize int          `yaml:"lru_size"`
	Redis   RedisConfig  `yaml:"redis"`
	Badger  BadgerConfig `yaml:"badger"`
}

// RedisConfig holds redis connection settings for the embedding cache.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BadgerConfig holds badger settings for the embedding cache.
type BadgerConfig struct {
	Dir      string `yaml:"dir"` // default: <data_dir>/cache
	InMemory bool   `yaml:"in_memory"`
}

// AnswerConfig holds answer synthesizer settings. The simple synthesizer
// needs no configuration.
type AnswerConfig struct {
	OpenAI  AnswerOpenAIConfig  `yaml:"openai"`
	Local   AnswerLocalConfig   `yaml:"local"`
	GPT4All AnswerGPT4AllConfig `yaml:"gpt4all"`
}

// AnswerOpenAIConfig holds OpenAI chat completion settings.
type AnswerOpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// AnswerLocalConfig holds local model server settings.
type AnswerLocalConfig struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

// AnswerGPT4AllConfig holds GPT4All API server settings.
type AnswerGPT4AllConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A missing file is not an error unless CONFIG_PATH names it explicitly: the
// server runs on defaults plus environment variables.
func Load(env string) (Config, error) {
	configPath, explicit := findConfigPath(env)

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(configPath))
	switch {
	case err == nil:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, run on defaults.
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.DataDir == "" {
		c.Corpus.DataDir = "data"
	}
	if c.Index.Path == "" {
		c.Index.Path = filepath.Join(c.Corpus.DataDir, "index.bin")
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "tfidf"
	}
	if c.Embedding.TFIDF.MaxFeatures <= 0 {
		c.Embedding.TFIDF.MaxFeatures = 5000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.LRUSize <= 0 {
		c.Cache.LRUSize = 1024
	}
	if c.Cache.Redis.ReadinessTimeout <= 0 {
		c.Cache.Redis.ReadinessTimeout = 10
	}
	if c.Cache.Badger.Dir == "" {
		c.Cache.Badger.Dir = filepath.Join(c.Corpus.DataDir, "cache")
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Embedding.Model {
	case "", "tfidf":
		// ok
	case "openai":
		if c.Embedding.OpenAI.APIKey == "" {
			return fmt.Errorf("embedding.openai.api_key is required when embedding.model is %q", "openai")
		}
	default:
		return fmt.Errorf("embedding.model must be \"tfidf\" or \"openai\", got %q", c.Embedding.Model)
	}
	switch c.Cache.Driver {
	case "", "none", "badger":
		// ok
	case "redis":
		if len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required when cache.driver is %q", "redis")
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"redis\" or \"badger\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file. An explicit CONFIG_PATH always
// wins; otherwise config.yaml is preferred over the per-environment file.
func findConfigPath(env string) (path string, explicit bool) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path, true
	}
	if fileExists("config.yaml") {
		return "config.yaml", false
	}
	return fmt.Sprintf("config.%s.yaml", env), false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
