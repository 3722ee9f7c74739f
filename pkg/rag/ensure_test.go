package rag_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/ikikae/inaka/pkg/model"
	"github.com/ikikae/inaka/pkg/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// mockStorage keeps blobs in memory.
type mockStorage struct {
	data map[string][]byte
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		data: make(map[string][]byte),
	}
}

func (m *mockStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return &mockWriteCloser{
		Buffer:  &bytes.Buffer{},
		storage: m,
		key:     key,
	}, nil
}

type mockWriteCloser struct {
	*bytes.Buffer
	storage *mockStorage
	key     string
}

func (m *mockWriteCloser) Close() error {
	m.storage.data[m.key] = m.Buffer.Bytes()
	return nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, goerr.Wrap(adapter.ErrObjectNotExist, "data not found", goerr.V("key", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func testSpots() []*model.Spot {
	return []*model.Spot{
		{ID: "iki-1", Name: "Iki Island", Category: "Nature", ShortDescription: "Island with beaches"},
		{ID: "yaku-1", Name: "Yakushima", Category: "Nature", ShortDescription: "Ancient forest"},
	}
}

func TestEnsureBuildsOnceThenLoads(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	emb := &keywordEmbedder{}
	spots := testSpots()

	idx1, err := rag.Ensure(ctx, st, emb, spots)
	gt.NoError(t, err)
	gt.Equal(t, emb.calls, 2)

	// Second call loads the persisted blob; nothing is re-embedded
	idx2, err := rag.Ensure(ctx, st, emb, spots)
	gt.NoError(t, err)
	gt.Equal(t, emb.calls, 2)

	query, err := emb.Embedding(ctx, "ancient forest")
	gt.NoError(t, err)
	want, err := idx1.Search(query, 2)
	gt.NoError(t, err)
	got, err := idx2.Search(query, 2)
	gt.NoError(t, err)
	gt.Equal(t, got, want)
}

func TestEnsureRebuildsWhenRecordsChange(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	emb := &keywordEmbedder{}
	spots := testSpots()

	_, err := rag.Ensure(ctx, st, emb, spots)
	gt.NoError(t, err)
	gt.Equal(t, emb.calls, 2)

	spots = append(spots, &model.Spot{ID: "iya-1", Name: "Iya Valley", ShortDescription: "Vine bridges"})
	idx, err := rag.Ensure(ctx, st, emb, spots)
	gt.NoError(t, err)
	gt.Equal(t, emb.calls, 5)
	gt.Equal(t, idx.Size(), 3)
}

func TestEnsureRebuildsOnEmbeddingModelChange(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	spots := testSpots()

	_, err := rag.Ensure(ctx, st, &keywordEmbedder{}, spots)
	gt.NoError(t, err)

	other := &vecEmbedder{
		model: "other-model",
		vectors: map[string][]float32{
			"Spot Name: Iki Island. Category: Nature. Description: Island with beaches. Highlights: ": {1, 0},
			"Spot Name: Yakushima. Category: Nature. Description: Ancient forest. Highlights: ":       {0, 1},
		},
	}
	idx, err := rag.Ensure(ctx, st, other, spots)
	gt.NoError(t, err)
	gt.Equal(t, idx.EmbeddingModel(), "other-model")
	gt.Equal(t, other.calls, 2)
}

func TestEnsureCorruptBlobSurfacesLoadError(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	st.data[rag.IndexKey] = []byte("garbage")

	_, err := rag.Ensure(ctx, st, &keywordEmbedder{}, testSpots())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, rag.ErrIndexLoad))
}
