package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func TestEmbedding(t *testing.T) {
	apiKey := os.Getenv("TEST_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_GEMINI_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, apiKey)
	gt.NoError(t, err)

	vec, err := client.Embedding(ctx, "ancient cedar forest on a rainy island")
	gt.NoError(t, err)
	gt.N(t, len(vec)).Greater(0)
}

func TestGenerateStream(t *testing.T) {
	apiKey := os.Getenv("TEST_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_GEMINI_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, apiKey)
	gt.NoError(t, err)

	contents := []*genai.Content{
		genai.NewContentFromText("Name one island in Nagasaki prefecture.", genai.RoleUser),
	}

	var answer string
	for resp, err := range client.GenerateStream(ctx, contents, nil) {
		gt.NoError(t, err)
		answer += resp.Text()
	}

	if answer == "" {
		t.Fatal("no streamed text received")
	}
	t.Log("response:", answer)
}
