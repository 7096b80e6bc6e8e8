// Package index builds, persists and loads search indexes and owns the
// live-index handle the rest of the service reads through.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/gofrs/flock"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
)

const defaultEmbedChunk = 64

// StoreConfig holds index store settings.
type StoreConfig struct {
	EmbedChunk int // documents per embedding task
	Workers    int // embedding worker pool size
	Logger     *zap.Logger
}

// Store builds, persists and loads indexes.
type Store struct {
	vectorizers VectorizerFactory
	chunk       int
	workers     int
	logger      *zap.Logger
}

// NewStore creates an index store.
func NewStore(vectorizers VectorizerFactory, cfg StoreConfig) *Store {
	chunk := cfg.EmbedChunk
	if chunk <= 0 {
		chunk = defaultEmbedChunk
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		vectorizers: vectorizers,
		chunk:       chunk,
		workers:     workers,
		logger:      logger,
	}
}

// Build reads the corpus, fits a fresh vectorizer, embeds every document and
// persists the result at path. A failed build leaves any existing index file
// untouched.
func (s *Store) Build(ctx context.Context, source CorpusSource, path string) (*domindex.Index, error) {
	docs, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	docs = dedupe(docs)
	if len(docs) == 0 {
		return nil, fmt.Errorf("build index: %w", domain.ErrEmptyCorpus)
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}

	vec, err := s.vectorizers.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vectorizer: %w", err)
	}
	if err := vec.Fit(ctx, texts); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	vectors, err := s.embedAll(ctx, vec, texts)
	if err != nil {
		return nil, err
	}

	state, err := vec.State()
	if err != nil {
		return nil, fmt.Errorf("export vectorizer state: %w", err)
	}

	idx, err := domindex.New(docs, vectors, vec, state, vec.ModelName())
	if err != nil {
		return nil, err
	}

	if err := s.persist(idx, path); err != nil {
		return nil, err
	}
	s.logger.Info("index built",
		zap.Int("documents", idx.Len()),
		zap.String("model", idx.ModelName()),
		zap.String("path", path))
	return idx, nil
}

// Load deserializes the index at path and restores its vectorizer.
func (s *Store) Load(ctx context.Context, path string) (*domindex.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index file %s: %w", path, domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	dto, err := unmarshalIndex(data)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}

	vec, err := s.vectorizers.Restore(dto.State)
	if err != nil {
		return nil, fmt.Errorf("restore vectorizer for index %s: %w", path, err)
	}

	docs := make([]document.Document, len(dto.Docs))
	for i, d := range dto.Docs {
		docs[i] = document.Reconstruct(d.ID, d.Text)
	}
	idx, err := domindex.New(docs, dto.Vectors, vec, dto.State, dto.ModelName)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	s.logger.Debug("index loaded",
		zap.Int("documents", idx.Len()),
		zap.String("model", idx.ModelName()),
		zap.String("path", path))
	return idx, nil
}

// embedAll runs Embed over fixed-size chunks on a worker pool. Results are
// written back by offset, so document order is preserved regardless of task
// completion order.
func (s *Store) embedAll(ctx context.Context, vec domain.Vectorizer, texts []string) ([][]float64, error) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create embed pool: %w", err)
	}
	defer pool.Release()

	out := make([][]float64, len(texts))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for lo := 0; lo < len(texts); lo += s.chunk {
		hi := lo + s.chunk
		if hi > len(texts) {
			hi = len(texts)
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if failed() {
				return
			}
			vecs, err := vec.Embed(ctx, texts[lo:hi])
			if err != nil {
				fail(err)
				return
			}
			copy(out[lo:hi], vecs)
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("embed corpus: %w", firstErr)
	}
	return out, nil
}

// persist writes the index to <path>.tmp and renames it into place under a
// cross-process file lock, so a crash mid-write never corrupts the live file.
func (s *Store) persist(idx *domindex.Index, path string) error {
	data := marshalIndex(toDTO(idx))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock index file: %w", err)
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

func toDTO(idx *domindex.Index) indexDTO {
	src := idx.Docs()
	docs := make([]docDTO, len(src))
	for i := range src {
		docs[i] = docDTO{ID: src[i].ID(), Text: src[i].Text()}
	}
	return indexDTO{
		ModelName: idx.ModelName(),
		State:     idx.State(),
		Docs:      docs,
		Vectors:   idx.Vectors(),
	}
}

// dedupe drops documents with an already-seen id, keeping the first.
func dedupe(docs []document.Document) []document.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]document.Document, 0, len(docs))
	for _, d := range docs {
		if _, dup := seen[d.ID()]; dup {
			continue
		}
		seen[d.ID()] = struct{}{}
		out = append(out, d)
	}
	return out
}
