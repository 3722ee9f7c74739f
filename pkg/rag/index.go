package rag

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// ErrIndexLoad indicates a persisted index blob is corrupt or incompatible
// with the current embedding configuration. Loading must reject such data
// instead of returning garbage search results.
var ErrIndexLoad = goerr.New("failed to load vector index")

const indexVersion = 1

// Embedder converts text into a fixed-dimension vector. An index records the
// model name of the embedder that built it and refuses to serve queries
// embedded by a different model.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
	EmbeddingModel() string
}

// SearchResult is a document matched by similarity search.
type SearchResult struct {
	Document Document
	Score    float64
}

// Index holds embedded documents and serves nearest-neighbor search over
// them. Once built or loaded it is immutable and safe for concurrent reads.
type Index struct {
	embeddingModel string
	dimension      int
	fingerprint    string
	docs           []Document
}

// Build embeds every document and constructs an index. Any embedding failure
// aborts the whole build; a partial index is never returned.
func Build(ctx context.Context, emb Embedder, docs []Document) (*Index, error) {
	idx := &Index{
		embeddingModel: emb.EmbeddingModel(),
		fingerprint:    Fingerprint(docs),
		docs:           make([]Document, 0, len(docs)),
	}

	for _, doc := range docs {
		vec, err := emb.Embedding(ctx, doc.Content)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed document", goerr.V("id", doc.Metadata["id"]))
		}
		if idx.dimension == 0 {
			idx.dimension = len(vec)
		} else if len(vec) != idx.dimension {
			return nil, goerr.New("inconsistent embedding dimension",
				goerr.V("id", doc.Metadata["id"]),
				goerr.V("expected", idx.dimension),
				goerr.V("actual", len(vec)))
		}
		doc.Vector = vec
		idx.docs = append(idx.docs, doc)
	}

	return idx, nil
}

// Size returns the number of indexed documents.
func (x *Index) Size() int {
	return len(x.docs)
}

// EmbeddingModel returns the model name the index was built with.
func (x *Index) EmbeddingModel() string {
	return x.embeddingModel
}

// Fingerprint returns the hash of the document set the index was built from.
func (x *Index) Fingerprint() string {
	return x.fingerprint
}

// Search returns up to k documents ordered by descending cosine similarity.
// Ties keep original insertion order. The query vector must match the index
// dimension; mixing embedding models is a correctness hazard, not a soft
// degradation.
func (x *Index) Search(vec []float32, k int) ([]SearchResult, error) {
	if k < 1 {
		return nil, goerr.New("k must be at least 1", goerr.V("k", k))
	}
	if len(vec) != x.dimension {
		return nil, goerr.New("query vector dimension mismatch",
			goerr.V("expected", x.dimension),
			goerr.V("actual", len(vec)))
	}

	results := make([]SearchResult, 0, len(x.docs))
	for _, doc := range x.docs {
		results = append(results, SearchResult{
			Document: doc,
			Score:    cosineSimilarity(doc.Vector, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// indexEnvelope is the on-disk form of an Index.
type indexEnvelope struct {
	Version        int        `json:"version"`
	EmbeddingModel string     `json:"embeddingModel"`
	Dimension      int        `json:"dimension"`
	Fingerprint    string     `json:"fingerprint"`
	Documents      []Document `json:"documents"`
}

// Encode serializes the index as a single blob.
func (x *Index) Encode(w io.Writer) error {
	env := indexEnvelope{
		Version:        indexVersion,
		EmbeddingModel: x.embeddingModel,
		Dimension:      x.dimension,
		Fingerprint:    x.fingerprint,
		Documents:      x.docs,
	}
	if err := json.NewEncoder(w).Encode(&env); err != nil {
		return goerr.Wrap(err, "failed to encode vector index")
	}
	return nil
}

// Decode deserializes an index blob, rejecting corrupt or version
// incompatible data with ErrIndexLoad.
func Decode(r io.Reader) (*Index, error) {
	var env indexEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, goerr.Wrap(ErrIndexLoad, "corrupt index blob", goerr.V("cause", err.Error()))
	}

	if env.Version != indexVersion {
		return nil, goerr.Wrap(ErrIndexLoad, "unsupported index version", goerr.V("version", env.Version))
	}
	if env.Dimension <= 0 {
		return nil, goerr.Wrap(ErrIndexLoad, "invalid index dimension", goerr.V("dimension", env.Dimension))
	}
	for _, doc := range env.Documents {
		if len(doc.Vector) != env.Dimension {
			return nil, goerr.Wrap(ErrIndexLoad, "document vector dimension mismatch",
				goerr.V("id", doc.Metadata["id"]),
				goerr.V("expected", env.Dimension),
				goerr.V("actual", len(doc.Vector)))
		}
	}

	return &Index{
		embeddingModel: env.EmbeddingModel,
		dimension:      env.Dimension,
		fingerprint:    env.Fingerprint,
		docs:           env.Documents,
	}, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
