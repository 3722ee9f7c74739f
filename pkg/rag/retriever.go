package rag

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultTopK is the number of documents retrieved for a question when the
// caller does not specify one.
const DefaultTopK = 3

// Retriever embeds a query and returns the closest documents from an index.
type Retriever struct {
	emb   Embedder
	index *Index
}

func NewRetriever(emb Embedder, index *Index) *Retriever {
	return &Retriever{emb: emb, index: index}
}

// Retrieve returns up to k matching documents for the query, best first.
// Fewer than k results means the index itself holds fewer documents; that is
// not an error. k = 0 selects DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k == 0 {
		k = DefaultTopK
	}
	if k < 1 {
		return nil, goerr.New("k must be at least 1", goerr.V("k", k))
	}

	vec, err := r.emb.Embedding(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	return r.index.Search(vec, k)
}
