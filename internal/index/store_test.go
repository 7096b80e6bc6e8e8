package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
)

func TestStore_BuildAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	store := newTestStore(t)
	source := &stubSource{docs: docsOf(t,
		"data/a.txt", "alpha beta",
		"data/b.txt", "no match here",
		"data/c.txt", "gamma delta",
	)}

	built, err := store.Build(context.Background(), source, path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Len() != 3 {
		t.Fatalf("built Len() = %d, want 3", built.Len())
	}

	loaded, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != built.Len() {
		t.Fatalf("loaded Len() = %d, want %d", loaded.Len(), built.Len())
	}
	for i := 0; i < built.Len(); i++ {
		b, l := built.Doc(i), loaded.Doc(i)
		if b.ID() != l.ID() || b.Text() != l.Text() {
			t.Errorf("doc %d mismatch: %q/%q vs %q/%q", i, b.ID(), b.Text(), l.ID(), l.Text())
		}
	}
	if !reflect.DeepEqual(built.Vectors(), loaded.Vectors()) {
		t.Error("vectors changed across save/load")
	}
	if loaded.ModelName() != "stub" {
		t.Errorf("ModelName() = %q", loaded.ModelName())
	}
}

func TestStore_Build_EmptyCorpusLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	previous := []byte("previous index bytes")
	if err := os.WriteFile(path, previous, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := newTestStore(t)
	_, err := store.Build(context.Background(), &stubSource{}, path)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("Build = %v, want ErrEmptyCorpus", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != string(previous) {
		t.Error("failed build modified the existing index file")
	}
}

func TestStore_Build_DedupesIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	store := newTestStore(t)
	source := &stubSource{docs: docsOf(t,
		"dup.txt", "first occurrence",
		"other.txt", "middle",
		"dup.txt", "second occurrence",
	)}

	idx, err := store.Build(context.Background(), source, path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	first := idx.Doc(0)
	if first.Text() != "first occurrence" {
		t.Errorf("kept text = %q, want the first occurrence", first.Text())
	}
}

func TestStore_Build_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "index.bin")
	store := newTestStore(t)
	source := &stubSource{docs: docsOf(t, "a.txt", "content")}

	if _, err := store.Build(context.Background(), source, path); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
}

func TestStore_Build_PreservesVectorOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	// Small chunks and several workers force out-of-order task completion.
	store := NewStore(&stubFactory{}, StoreConfig{EmbedChunk: 3, Workers: 4, Logger: zap.NewNop()})

	var docs []document.Document
	for i := 0; i < 100; i++ {
		doc, err := document.New(fmt.Sprintf("doc-%03d.txt", i), fmt.Sprintf("text number %d padding", i))
		if err != nil {
			t.Fatalf("document.New: %v", err)
		}
		docs = append(docs, doc)
	}

	idx, err := store.Build(context.Background(), &stubSource{docs: docs}, path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < idx.Len(); i++ {
		doc := idx.Doc(i)
		want := stubVector(doc.Text())
		if !reflect.DeepEqual(idx.Vectors()[i], want) {
			t.Fatalf("vectors[%d] = %v, want %v (order not preserved)", i, idx.Vectors()[i], want)
		}
	}
}

func TestStore_Build_EmbedErrorPropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	embedErr := errors.New("backend down")
	factory := &stubFactory{vec: &stubVectorizer{embedErr: embedErr}}
	store := NewStore(factory, StoreConfig{Logger: zap.NewNop()})

	_, err := store.Build(context.Background(), &stubSource{docs: docsOf(t, "a.txt", "content")}, path)
	if !errors.Is(err, embedErr) {
		t.Fatalf("Build = %v, want wrapped embed error", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed build left an index file behind")
	}
}

func TestStore_Build_SourceErrorPropagates(t *testing.T) {
	srcErr := errors.New("disk gone")
	store := newTestStore(t)
	_, err := store.Build(context.Background(), &stubSource{err: srcErr}, filepath.Join(t.TempDir(), "index.bin"))
	if !errors.Is(err, srcErr) {
		t.Fatalf("Build = %v, want wrapped source error", err)
	}
}

func TestStore_Load_Missing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "absent.bin"))
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("Load = %v, want ErrIndexNotFound", err)
	}
}

func TestStore_Load_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := newTestStore(t)
	_, err := store.Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for corrupt index file")
	}
	if errors.Is(err, domain.ErrIndexNotFound) {
		t.Error("corrupt file must not report ErrIndexNotFound")
	}
}

func TestStore_Load_RestoresVectorizerFromState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	factory := &stubFactory{}
	store := NewStore(factory, StoreConfig{Logger: zap.NewNop()})

	if _, err := store.Build(context.Background(), &stubSource{docs: docsOf(t, "a.txt", "content")}, path); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := store.Load(context.Background(), path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(factory.restored) != 1 {
		t.Fatalf("Restore called %d times, want 1", len(factory.restored))
	}
	if factory.restored[0].Kind != "stub" {
		t.Errorf("restored state kind = %q", factory.restored[0].Kind)
	}
}
