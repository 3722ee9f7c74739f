package adapter

import (
	"context"
	"iter"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// ErrEmbeddingUnavailable indicates the embedding provider could not be
// reached or returned no vector. A partial index is worse than a visible
// failure, so callers must stop on this error.
var ErrEmbeddingUnavailable = goerr.New("embedding service unavailable")

// Gemini is the interface for the Gemini API used by the chat and retrieval
// layers.
type Gemini interface {
	// GenerateStream streams a model response for the given contents. The
	// returned sequence is single-pass; stopping iteration releases the
	// underlying stream.
	GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	// Embedding converts text into a fixed-dimension vector.
	Embedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	embeddingModel  string
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

// NewGemini creates a Gemini API client authenticated by API key.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.0-flash",
		embeddingModel:  "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// EmbeddingModel returns the model name used for embeddings. An index built
// with one model must not be queried with another.
func (g *GeminiClient) EmbeddingModel() string {
	return g.embeddingModel
}

func (g *GeminiClient) GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return g.client.Models.GenerateContentStream(ctx, g.generativeModel, contents, config)
}

func (g *GeminiClient) Embedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(ErrEmbeddingUnavailable, "failed to embed content", goerr.V("cause", err.Error()))
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.Wrap(ErrEmbeddingUnavailable, "empty embedding response")
	}

	return resp.Embeddings[0].Values, nil
}
