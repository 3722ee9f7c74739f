package chat

import (
	"context"
	"iter"
	"strings"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/ikikae/inaka/pkg/model"
	"github.com/ikikae/inaka/pkg/rag"
	"github.com/ikikae/inaka/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// ErrGenerationFailed indicates the language model call failed or the stream
// was cut off before completion. The asked question stays in the
// conversation as the last unanswered turn so the caller may retry it.
var ErrGenerationFailed = goerr.New("answer generation failed")

// Phase is the processing state of the current question.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRetrieving Phase = "retrieving"
	PhasePrompting  Phase = "prompting"
	PhaseStreaming  Phase = "streaming"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

const systemPrompt = `You are a friendly travel guide for rural Japanese tourist destinations.
Answer the visitor's question using the reference information below.
If the reference information does not cover the question, say so instead of guessing.`

// Session runs grounded question answering over one conversation. It owns
// the conversation state and must not be shared between concurrent askers:
// one question at a time.
type Session struct {
	id        model.SessionID
	gemini    adapter.Gemini
	retriever *rag.Retriever
	conv      *model.Conversation
	topK      int
	phase     Phase
}

// NewInput contains the dependencies for a chat session. They are owned by
// the caller; the session holds no hidden global state.
type NewInput struct {
	Gemini    adapter.Gemini
	Retriever *rag.Retriever
	TopK      int // 0 selects rag.DefaultTopK
}

func New(input NewInput) *Session {
	return &Session{
		id:        model.NewSessionID(),
		gemini:    input.Gemini,
		retriever: input.Retriever,
		conv:      model.NewConversation(),
		topK:      input.TopK,
		phase:     PhaseIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() model.SessionID {
	return s.id
}

// Phase returns the processing state of the most recent question.
func (s *Session) Phase() Phase {
	return s.phase
}

// History returns the conversation turns recorded so far.
func (s *Session) History() []model.Turn {
	return s.conv.History()
}

// Ask answers the question grounded on retrieved spot documents and the
// conversation so far. The answer arrives as a single-pass fragment stream;
// the caller prints fragments as they come. When the stream finishes cleanly
// the full answer is recorded as an assistant turn. On failure, or when the
// caller stops iterating, no assistant turn is recorded.
func (s *Session) Ask(ctx context.Context, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		logger := logging.From(ctx).With("session", s.id)

		s.phase = PhaseRetrieving
		s.conv.Append(model.RoleUser, question)
		history := s.conv.Paired()

		results, err := s.retriever.Retrieve(ctx, question, s.topK)
		if err != nil {
			s.phase = PhaseFailed
			yield("", goerr.Wrap(err, "failed to retrieve documents"))
			return
		}
		logger.Debug("retrieved documents", "count", len(results))

		s.phase = PhasePrompting
		contents, config := buildPrompt(question, history, results)

		s.phase = PhaseStreaming
		var answer strings.Builder
		for resp, err := range s.gemini.GenerateStream(ctx, contents, config) {
			if err != nil {
				s.phase = PhaseFailed
				yield("", goerr.Wrap(ErrGenerationFailed, "stream interrupted", goerr.V("cause", err.Error())))
				return
			}

			fragment := resp.Text()
			if fragment == "" {
				continue
			}
			answer.WriteString(fragment)

			if !yield(fragment, nil) {
				// Caller abandoned the stream. The partial answer is
				// discarded, never recorded as an assistant turn.
				s.phase = PhaseFailed
				return
			}
		}

		s.conv.Append(model.RoleAssistant, answer.String())
		s.phase = PhaseCompleted
	}
}

// buildPrompt composes the grounded request: retrieved documents in the
// system instruction, paired history as prior contents, the question last.
func buildPrompt(question string, history []model.Exchange, results []rag.SearchResult) ([]*genai.Content, *genai.GenerateContentConfig) {
	var refs strings.Builder
	for _, r := range results {
		refs.WriteString("- ")
		refs.WriteString(r.Document.Content)
		refs.WriteString("\n")
	}

	contents := make([]*genai.Content, 0, len(history)*2+1)
	for _, ex := range history {
		contents = append(contents,
			genai.NewContentFromText(ex.User, genai.RoleUser),
			genai.NewContentFromText(ex.Assistant, genai.RoleModel),
		)
	}
	contents = append(contents, genai.NewContentFromText(question, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt+"\n\nReference information:\n"+refs.String(), ""),
		Temperature:       ptrFloat32(0),
	}

	return contents, config
}

func ptrFloat32(v float32) *float32 {
	return &v
}
