package rag

import (
	"context"
	"errors"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/ikikae/inaka/pkg/model"
	"github.com/ikikae/inaka/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// IndexKey is the storage key holding the serialized vector index.
const IndexKey = "index/spots.json"

// Ensure returns a ready index: loaded from storage when a persisted blob
// matches the current record set, rebuilt and persisted otherwise. A blob
// built from different records or a different embedding model counts as
// stale and triggers a rebuild. A corrupt blob is surfaced as ErrIndexLoad;
// forcing a rebuild over data we cannot even parse is the caller's call.
func Ensure(ctx context.Context, st adapter.Storage, emb Embedder, spots []*model.Spot) (*Index, error) {
	docs := BuildDocuments(spots)
	fingerprint := Fingerprint(docs)

	reader, err := st.Get(ctx, IndexKey)
	if err != nil {
		if !errors.Is(err, adapter.ErrObjectNotExist) {
			return nil, err
		}
		logging.From(ctx).Info("no persisted index, building", "documents", len(docs))
		return Rebuild(ctx, st, emb, spots)
	}
	defer reader.Close()

	idx, err := Decode(reader)
	if err != nil {
		return nil, err
	}

	if idx.Fingerprint() != fingerprint || idx.EmbeddingModel() != emb.EmbeddingModel() {
		logging.From(ctx).Info("persisted index is stale, rebuilding",
			"indexed_model", idx.EmbeddingModel(),
			"current_model", emb.EmbeddingModel())
		return Rebuild(ctx, st, emb, spots)
	}

	logging.From(ctx).Debug("loaded persisted index", "documents", idx.Size())
	return idx, nil
}

// Rebuild embeds the full record set and persists the resulting index,
// replacing any previous blob.
func Rebuild(ctx context.Context, st adapter.Storage, emb Embedder, spots []*model.Spot) (*Index, error) {
	docs := BuildDocuments(spots)

	idx, err := Build(ctx, emb, docs)
	if err != nil {
		return nil, err
	}

	writer, err := st.Put(ctx, IndexKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index writer")
	}

	if err := idx.Encode(writer); err != nil {
		_ = writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close index writer")
	}

	logging.From(ctx).Info("vector index persisted", "documents", idx.Size(), "key", IndexKey)
	return idx, nil
}
