package docdex

import (
	"time"

	"go.uber.org/zap"
)

type clientConfig struct {
	dataDir   string
	patterns  []string
	indexPath string

	embedModel    string
	maxFeatures   int
	openaiKey     string
	openaiBaseURL string
	openaiModel   string
	openaiDims    int

	cacheDriver    string
	redisAddrs     []string
	redisPassword  string
	badgerDir      string
	badgerInMemory bool
	cacheTTL       time.Duration
	lruSize        int

	answerOpenAIKey     string
	answerOpenAIBaseURL string
	answerOpenAIModel   string
	localServerURL      string
	localModel          string
	gpt4allBaseURL      string
	gpt4allModel        string

	logger *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDataDir sets the corpus directory (default "data").
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithIndexPath sets the index file path (default <data dir>/index.bin).
func WithIndexPath(path string) Option {
	return func(c *clientConfig) {
		c.indexPath = path
	}
}

// WithPatterns restricts corpus loading to the given file name patterns.
func WithPatterns(patterns ...string) Option {
	return func(c *clientConfig) {
		c.patterns = patterns
	}
}

// WithMaxFeatures caps the tfidf vocabulary size (default 5000).
func WithMaxFeatures(n int) Option {
	return func(c *clientConfig) {
		c.maxFeatures = n
	}
}

// WithOpenAIEmbeddings switches vectorization from tfidf to the OpenAI
// embeddings API. model empty selects the provider default.
func WithOpenAIEmbeddings(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.embedModel = "openai"
		c.openaiKey = apiKey
		c.openaiModel = model
	}
}

// WithOpenAIEmbeddingsBaseURL overrides the embeddings API endpoint, for
// proxies and compatible providers.
func WithOpenAIEmbeddingsBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.openaiBaseURL = baseURL
	}
}

// WithEmbeddingDimensions requests truncated embeddings from the provider.
func WithEmbeddingDimensions(n int) Option {
	return func(c *clientConfig) {
		c.openaiDims = n
	}
}

// WithRedisCache caches remote embeddings in Redis.
func WithRedisCache(addr, password string) Option {
	return func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	}
}

// WithBadgerCache caches remote embeddings in an embedded Badger database
// at dir.
func WithBadgerCache(dir string) Option {
	return func(c *clientConfig) {
		c.cacheDriver = "badger"
		c.badgerDir = dir
	}
}

// WithInMemoryCache caches remote embeddings in a process-local Badger
// instance that never touches the filesystem.
func WithInMemoryCache() Option {
	return func(c *clientConfig) {
		c.cacheDriver = "badger"
		c.badgerInMemory = true
	}
}

// WithCacheTTL bounds the lifetime of persistently cached embeddings
// (default: no expiry).
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheTTL = ttl
	}
}

// WithLRUSize sets the in-process embedding cache capacity.
func WithLRUSize(n int) Option {
	return func(c *clientConfig) {
		c.lruSize = n
	}
}

// WithOpenAIAnswers enables the "openai" answer provider.
func WithOpenAIAnswers(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.answerOpenAIKey = apiKey
		c.answerOpenAIModel = model
	}
}

// WithOpenAIAnswersBaseURL overrides the chat API endpoint.
func WithOpenAIAnswersBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.answerOpenAIBaseURL = baseURL
	}
}

// WithLocalAnswers enables the "local" answer provider, served by an
// Ollama server. serverURL empty targets http://localhost:11434.
func WithLocalAnswers(serverURL, model string) Option {
	return func(c *clientConfig) {
		c.localServerURL = serverURL
		c.localModel = model
	}
}

// WithGPT4AllAnswers enables the "gpt4all" answer provider through its
// OpenAI-compatible API server.
func WithGPT4AllAnswers(baseURL, model string) Option {
	return func(c *clientConfig) {
		c.gpt4allBaseURL = baseURL
		c.gpt4allModel = model
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
