package chat_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/ikikae/inaka/pkg/model"
	"github.com/ikikae/inaka/pkg/rag"
	"github.com/ikikae/inaka/pkg/usecase/chat"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

// mockGemini streams canned fragments and embeds by keyword counts, so test
// queries land on the expected documents deterministically.
type mockGemini struct {
	fragments []string
	streamErr error
	embedErr  error

	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
}

var keywordTerms = []string{"ancient", "cedar", "forest", "beach", "island"}

func (m *mockGemini) EmbeddingModel() string {
	return "mock-embedding"
}

func (m *mockGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(keywordTerms))
	for i, term := range keywordTerms {
		vec[i] = float32(strings.Count(lower, term))
	}
	return vec, nil
}

func (m *mockGemini) GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	m.lastContents = contents
	m.lastConfig = config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, f := range m.fragments {
			if !yield(textResponse(f), nil) {
				return
			}
		}
		if m.streamErr != nil {
			yield(nil, m.streamErr)
		}
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func testSpots() []*model.Spot {
	return []*model.Spot{
		{ID: "iki-1", Name: "Iki Island", Category: "Nature", ShortDescription: "Island with beaches"},
		{ID: "yaku-1", Name: "Yakushima", Category: "Nature", ShortDescription: "Ancient forest"},
	}
}

func newTestSession(t *testing.T, mock *mockGemini) *chat.Session {
	t.Helper()
	idx, err := rag.Build(context.Background(), mock, rag.BuildDocuments(testSpots()))
	gt.NoError(t, err)

	return chat.New(chat.NewInput{
		Gemini:    mock,
		Retriever: rag.NewRetriever(mock, idx),
	})
}

func collect(t *testing.T, seq iter.Seq2[string, error]) (string, error) {
	t.Helper()
	var sb strings.Builder
	for fragment, err := range seq {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}

func TestAskStreamsAndRecordsTurns(t *testing.T) {
	mock := &mockGemini{fragments: []string{"Yakushima ", "is famous ", "for cedar trees."}}
	session := newTestSession(t, mock)
	ctx := context.Background()

	answer, err := collect(t, session.Ask(ctx, "Where can I see ancient cedar trees?"))
	gt.NoError(t, err)
	gt.Equal(t, answer, "Yakushima is famous for cedar trees.")
	gt.Equal(t, session.Phase(), chat.PhaseCompleted)

	history := session.History()
	gt.A(t, history).Length(2)
	gt.Equal(t, history[0].Role, model.RoleUser)
	gt.Equal(t, history[1].Role, model.RoleAssistant)
	gt.Equal(t, history[1].Text, answer)

	// Grounding context carries the retrieved documents
	gt.V(t, mock.lastConfig).NotNil()
	system := mock.lastConfig.SystemInstruction.Parts[0].Text
	gt.True(t, strings.Contains(system, "Yakushima"))
}

func TestAskSecondQuestionCarriesPairedHistory(t *testing.T) {
	mock := &mockGemini{fragments: []string{"First answer."}}
	session := newTestSession(t, mock)
	ctx := context.Background()

	_, err := collect(t, session.Ask(ctx, "Tell me about the island beaches"))
	gt.NoError(t, err)

	mock.fragments = []string{"Second answer."}
	_, err = collect(t, session.Ask(ctx, "And the ancient forest?"))
	gt.NoError(t, err)

	// prior exchange (user + model) plus the new question
	gt.A(t, mock.lastContents).Length(3)
	gt.Equal(t, mock.lastContents[0].Parts[0].Text, "Tell me about the island beaches")
	gt.Equal(t, mock.lastContents[1].Parts[0].Text, "First answer.")
	gt.Equal(t, mock.lastContents[2].Parts[0].Text, "And the ancient forest?")

	gt.A(t, session.History()).Length(4)
}

func TestAskStreamFailureLeavesNoPartialTurn(t *testing.T) {
	mock := &mockGemini{
		fragments: []string{"partial "},
		streamErr: goerr.New("connection reset"),
	}
	session := newTestSession(t, mock)

	_, err := collect(t, session.Ask(context.Background(), "Where are the beaches?"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, chat.ErrGenerationFailed))
	gt.Equal(t, session.Phase(), chat.PhaseFailed)

	// Only the unanswered user turn remains; the caller may retry it
	history := session.History()
	gt.A(t, history).Length(1)
	gt.Equal(t, history[0].Role, model.RoleUser)
}

func TestAskRetrievalFailure(t *testing.T) {
	// Index built with a working embedder, then queries fail to embed
	idx, err := rag.Build(context.Background(), &mockGemini{}, rag.BuildDocuments(testSpots()))
	gt.NoError(t, err)

	mock := &mockGemini{embedErr: adapter.ErrEmbeddingUnavailable}
	session := chat.New(chat.NewInput{
		Gemini:    mock,
		Retriever: rag.NewRetriever(mock, idx),
	})

	_, err = collect(t, session.Ask(context.Background(), "anything"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, adapter.ErrEmbeddingUnavailable))
	gt.Equal(t, session.Phase(), chat.PhaseFailed)
	gt.A(t, session.History()).Length(1)
}

func TestAskAbandonedStreamRecordsNothing(t *testing.T) {
	mock := &mockGemini{fragments: []string{"one ", "two ", "three"}}
	session := newTestSession(t, mock)

	for fragment, err := range session.Ask(context.Background(), "Where are the beaches?") {
		gt.NoError(t, err)
		if fragment != "" {
			break // walk away mid-stream
		}
	}

	gt.Equal(t, session.Phase(), chat.PhaseFailed)
	history := session.History()
	gt.A(t, history).Length(1)
	gt.Equal(t, history[0].Role, model.RoleUser)
}
