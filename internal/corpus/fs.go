package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docdex/internal/domain/document"
)

const defaultParallelism = 8

// FSConfig holds filesystem source settings.
type FSConfig struct {
	Dir         string
	Patterns    []string  // nil selects DefaultPatterns
	Extractor   Extractor // nil skips binary document formats
	Parallelism int       // max concurrent file reads
	Logger      *zap.Logger
}

// FS loads documents from a directory tree.
type FS struct {
	dir         string
	patterns    []string
	extractor   Extractor
	parallelism int
	logger      *zap.Logger
}

// NewFS creates a filesystem corpus source.
func NewFS(cfg FSConfig) *FS {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FS{
		dir:         cfg.Dir,
		patterns:    patterns,
		extractor:   cfg.Extractor,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Load walks the directory and returns one document per readable, non-empty
// file. Enumeration is pattern-major with lexical order inside each pattern,
// duplicates removed keeping the first occurrence, so repeated loads over an
// unchanged tree produce the same document order. Unreadable files are
// logged and skipped.
func (s *FS) Load(ctx context.Context) ([]document.Document, error) {
	paths, err := s.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate corpus files in %s: %w", s.dir, err)
	}

	texts := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := s.read(gctx, path)
			if err != nil {
				s.logger.Debug("skipping unreadable file", zap.String("path", path), zap.Error(err))
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read corpus files: %w", err)
	}

	docs := make([]document.Document, 0, len(paths))
	for i, path := range paths {
		text := strings.TrimSpace(strings.ToValidUTF8(texts[i], ""))
		if text == "" {
			continue
		}
		doc, err := document.New(path, text)
		if err != nil {
			s.logger.Debug("skipping file", zap.String("path", path), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// enumerate walks the tree once, then matches the walked files against each
// pattern in turn. WalkDir visits lexically, which keeps the result stable.
func (s *FS) enumerate() ([]string, error) {
	var walked []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			walked = append(walked, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(walked))
	var out []string
	for _, pattern := range s.patterns {
		for _, path := range walked {
			ok, err := filepath.Match(pattern, filepath.Base(path))
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	return out, nil
}

func (s *FS) read(ctx context.Context, path string) (string, error) {
	switch {
	case s.extractor != nil && s.extractor.Supports(path):
		return s.extractor.Extract(ctx, path)
	case isBinaryFormat(path):
		// No extractor configured; the file contributes nothing.
		return "", nil
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func isBinaryFormat(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc":
		return true
	}
	return false
}
