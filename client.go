// Package docdex embeds the document question-answering service in a Go
// process: the same corpus loader, index store, retriever and answer
// synthesizers the docdex server runs, wired directly without HTTP.
package docdex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/answer"
	"github.com/kailas-cloud/docdex/internal/corpus"
	"github.com/kailas-cloud/docdex/internal/db"
	dbBadger "github.com/kailas-cloud/docdex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/docdex/internal/db/redis"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/index"
	"github.com/kailas-cloud/docdex/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/docdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/docdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
	rebuilduc "github.com/kailas-cloud/docdex/internal/usecase/rebuild"
	"github.com/kailas-cloud/docdex/internal/vectorizer"
	"github.com/kailas-cloud/docdex/internal/vectorizer/tfidf"
)

const defaultCacheReadiness = 10 * time.Second

// Sentinel errors surfaced by Client operations, usable with errors.Is.
var (
	ErrIndexNotLoaded    = domain.ErrIndexNotLoaded
	ErrIndexNotFound     = domain.ErrIndexNotFound
	ErrRebuildInProgress = domain.ErrRebuildInProgress
	ErrEmptyCorpus       = domain.ErrEmptyCorpus
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidProvider   = domain.ErrInvalidProvider
)

// Client is the docdex embedded entry point.
type Client struct {
	store   db.Store
	handle  *index.Handle
	query   *queryuc.Service
	rebuild *rebuilduc.Service
	health  *healthuc.Service
}

// New creates a Client over a document directory. An index persisted by a
// previous run is loaded when present; otherwise the first RebuildIndex
// call creates one.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{dataDir: "data"}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.dataDir == "" {
		return nil, errors.New("docdex: data directory required")
	}
	if cfg.indexPath == "" {
		cfg.indexPath = filepath.Join(cfg.dataDir, "index.bin")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(context.Background(), defaultCacheReadiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("docdex: cache store not ready: %w", err)
		}
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "":
		return nil, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("docdex: create redis cache: %w", err)
		}
		return s, nil
	case "badger":
		s, err := dbBadger.NewStore(dbBadger.Config{
			Dir:      cfg.badgerDir,
			InMemory: cfg.badgerInMemory,
			Logger:   cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("docdex: create badger cache: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("docdex: unknown cache driver %q", cfg.cacheDriver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	vectorizers := vectorizer.NewFactory(&vectorizer.Config{
		Model: cfg.embedModel,
		TFIDF: tfidf.Config{MaxFeatures: cfg.maxFeatures},
		OpenAI: openaiEmb.Config{
			APIKey:     cfg.openaiKey,
			BaseURL:    cfg.openaiBaseURL,
			Model:      cfg.openaiModel,
			Dimensions: cfg.openaiDims,
			Logger:     cfg.logger,
		},
		RemoteDecorators: remoteDecorators(store, cfg),
		Logger:           cfg.logger,
	})

	source := corpus.NewFS(corpus.FSConfig{
		Dir:      cfg.dataDir,
		Patterns: cfg.patterns,
		Logger:   cfg.logger,
	})

	indexes := index.NewStore(vectorizers, index.StoreConfig{Logger: cfg.logger})

	handle := index.NewHandle()
	if idx, err := indexes.Load(context.Background(), cfg.indexPath); err == nil {
		handle.Swap(idx)
	}

	factoryCfg := &answer.FactoryConfig{Logger: cfg.logger}
	if cfg.answerOpenAIKey != "" {
		factoryCfg.OpenAI = answer.NewOpenAI(&answer.OpenAIConfig{
			APIKey:  cfg.answerOpenAIKey,
			BaseURL: cfg.answerOpenAIBaseURL,
			Model:   cfg.answerOpenAIModel,
			Logger:  cfg.logger,
		})
	}
	if cfg.localModel != "" {
		factoryCfg.Local = answer.NewLocal(&answer.LocalConfig{
			ServerURL: cfg.localServerURL,
			Model:     cfg.localModel,
			Logger:    cfg.logger,
		})
	}
	if cfg.gpt4allBaseURL != "" || cfg.gpt4allModel != "" {
		factoryCfg.GPT4All = answer.NewGPT4All(&answer.GPT4AllConfig{
			BaseURL: cfg.gpt4allBaseURL,
			Model:   cfg.gpt4allModel,
			Logger:  cfg.logger,
		})
	}
	answers := answer.NewFactory(factoryCfg)

	return &Client{
		store:   store,
		handle:  handle,
		query:   queryuc.New(handle, indexes, answers),
		rebuild: rebuilduc.New(handle, indexes, source, cfg.indexPath),
		health:  healthuc.New(handle),
	}
}

// remoteDecorators assembles the cache layers applied to remote
// vectorizers, innermost first. The tfidf backend never sees them.
func remoteDecorators(store db.Store, cfg *clientConfig) []vectorizer.Decorator {
	var decorators []vectorizer.Decorator
	if store != nil {
		decorators = append(decorators, func(v domain.Vectorizer) domain.Vectorizer {
			return embcache.New(v, store, cfg.cacheTTL, nil, cfg.logger)
		})
	}
	decorators = append(decorators,
		func(v domain.Vectorizer) domain.Vectorizer {
			return embcache.NewLRU(v, cfg.lruSize)
		},
		func(v domain.Vectorizer) domain.Vectorizer {
			return embeddinguc.NewInstrumentedVectorizer(v, cfg.logger)
		},
	)
	return decorators
}

// Close releases the embedding cache store, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// RebuildResult reports a completed index rebuild.
type RebuildResult struct {
	NumDocuments int
	IndexPath    string
}

// RebuildIndex re-reads the corpus, builds a fresh index, persists it and
// swaps it live. Only one rebuild runs at a time; a concurrent call gets
// ErrRebuildInProgress and the live index stays untouched.
func (c *Client) RebuildIndex(ctx context.Context) (*RebuildResult, error) {
	resp, err := c.rebuild.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return &RebuildResult{
		NumDocuments: resp.NumDocuments,
		IndexPath:    resp.IndexPath,
	}, nil
}

// Health reports service state.
type Health struct {
	IndexLoaded  bool
	Rebuilding   bool
	NumDocuments int
}

// Health reports whether an index is loaded and a rebuild is running.
func (c *Client) Health(ctx context.Context) Health {
	rep := c.health.Report(ctx)
	return Health{
		IndexLoaded:  rep.IndexLoaded,
		Rebuilding:   rep.Rebuilding,
		NumDocuments: rep.NumDocuments,
	}
}
