package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-server/types"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSnippets = []Snippet{
	{Kind: "project", Title: "Realtime Chess", Url: "/projects/chess", Text: "Multiplayer chess over websockets written in Go.", Tags: "games go websockets"},
	{Kind: "skills", Title: "ai-ml skills", Url: "/skills?category=ai-ml", Text: "PyTorch, LangChain, retrieval augmented generation", Tags: "skills ai-ml"},
	{Kind: "experience", Title: "Engineer at Acme", Url: "/experience", Text: "Built payment pipelines in Kotlin.", Tags: "experience work acme"},
}

func staticCorpus(snippets []Snippet) CorpusFunc {
	return func(ctx context.Context) ([]Snippet, error) { return snippets, nil }
}

func userMsg(s string) types.ChatMessage { return types.ChatMessage{Role: RoleUser, Content: s} }
func assistantMsg(s string) types.ChatMessage {
	return types.ChatMessage{Role: RoleAssistant, Content: s}
}

func TestBM25RanksTitleMatchesFirst(t *testing.T) {
	idx := newBM25Index([]indexDoc{
		{fields: []field{{text: "Go websockets", weight: 1}}},
		{fields: []field{{text: "Chess engine", weight: 3}, {text: "go", weight: 1}}},
		{fields: []field{{text: "Gardening", weight: 1}}},
	})

	hits := idx.search("what chess projects have you built?", 0)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].doc)

	assert.Empty(t, idx.search("the and of", 5))
	assert.Len(t, idx.search("go", 1), 1)
}

func TestRetrieverRebuildsWhenStale(t *testing.T) {
	var builds atomic.Int32
	var fail atomic.Bool
	corpus := func(ctx context.Context) ([]Snippet, error) {
		builds.Add(1)
		if fail.Load() {
			return nil, errors.New("db down")
		}
		return testSnippets, nil
	}

	r := NewRetriever(corpus, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	res := r.Search(context.Background(), "chess", 2)
	require.NotEmpty(t, res)
	assert.Equal(t, "Realtime Chess", res[0].Title)

	r.Search(context.Background(), "acme", 2)
	assert.Equal(t, int32(1), builds.Load())

	// a failed rebuild keeps the previous index
	fail.Store(true)
	r.Invalidate()
	res = r.Search(context.Background(), "acme", 2)
	require.NotEmpty(t, res)
	assert.Equal(t, "Engineer at Acme", res[0].Title)
	assert.Equal(t, int32(2), builds.Load())

	fail.Store(false)
	now = now.Add(2 * time.Hour)
	r.Search(context.Background(), "acme", 2)
	assert.Equal(t, int32(3), builds.Load())
}

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name  string
		msgs  []types.ChatMessage
		field string
	}{
		{name: "empty", msgs: nil, field: "messages"},
		{name: "too many", msgs: make([]types.ChatMessage, MaxMessages+1), field: "messages"},
		{name: "ends with assistant", msgs: []types.ChatMessage{userMsg("hi"), assistantMsg("hello")}, field: "messages"},
		{name: "bad role", msgs: []types.ChatMessage{{Role: "system", Content: "x"}, userMsg("hi")}, field: "messages[0].role"},
		{name: "too long", msgs: []types.ChatMessage{userMsg(strings.Repeat("a", MaxMessageLength+1))}, field: "messages[0].content"},
		{name: "blank", msgs: []types.ChatMessage{userMsg("  ")}, field: "messages[0].content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ValidateChatRequest(types.ChatRequest{Messages: tt.msgs})
			require.NotNil(t, apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Contains(t, apiErr.Fields, tt.field)
		})
	}

	assert.Nil(t, ValidateChatRequest(types.ChatRequest{Messages: []types.ChatMessage{
		userMsg("hi"), assistantMsg("hello"), userMsg(strings.Repeat("é", MaxMessageLength)),
	}}))
}

func TestTrimHistory(t *testing.T) {
	long := strings.Repeat("hello ", 400)
	msgs := []types.ChatMessage{userMsg(long), assistantMsg(long), userMsg("and then?")}

	assert.Equal(t, msgs, TrimHistory(msgs, 100000))
	assert.Equal(t, msgs[2:], TrimHistory(msgs, 10))

	// room for the assistant turn but not the user turn before it: never start on an assistant turn
	assert.Equal(t, msgs[2:], TrimHistory(msgs, 700))
}

type blockingProvider struct{}

func (blockingProvider) Name() string  { return "blocking" }
func (blockingProvider) Model() string { return "slow-1" }
func (blockingProvider) Complete(ctx context.Context, system string, history []types.ChatMessage) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestChatbotOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Multiplayer chess")
		assert.Contains(t, req.Messages[0].Content, "Ada's portfolio")
		assert.Equal(t, "Tell me about the chess project", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "gpt-test",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " It is a multiplayer chess game. "},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	defer server.Close()

	bot := NewChatbot(ChatbotOptions{
		Provider:  NewOpenAIProvider("test-key", server.URL, "gpt-test", 200),
		Retriever: NewRetriever(staticCorpus(testSnippets), time.Hour),
		OwnerName: func() string { return "Ada" },
	})

	res, apiErr := bot.Reply(context.Background(), types.ChatRequest{Messages: []types.ChatMessage{userMsg("Tell me about the chess project")}})
	require.Nil(t, apiErr)
	assert.Equal(t, "It is a multiplayer chess game.", res.Reply)
	assert.False(t, res.Fallback)
	assert.Equal(t, "openai", res.Provider)
	require.NotEmpty(t, res.Sources)
	assert.Equal(t, "/projects/chess", res.Sources[0].Url)
}

func TestChatbotFallsBackOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	bot := NewChatbot(ChatbotOptions{
		Provider:  NewOpenAIProvider("test-key", server.URL, "gpt-test", 200),
		Retriever: NewRetriever(staticCorpus(testSnippets), time.Hour),
	})

	res, apiErr := bot.Reply(context.Background(), types.ChatRequest{Messages: []types.ChatMessage{userMsg("what ai-ml skills?")}})
	require.Nil(t, apiErr)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Reply, "ai-ml skills: PyTorch")
	assert.Equal(t, "openai", res.Provider)
}

func TestChatbotFallbackWithoutProvider(t *testing.T) {
	bot := NewChatbot(ChatbotOptions{Retriever: NewRetriever(staticCorpus(testSnippets), time.Hour)})

	res, apiErr := bot.Reply(context.Background(), types.ChatRequest{Messages: []types.ChatMessage{userMsg("quantum gardening")}})
	require.Nil(t, apiErr)
	assert.True(t, res.Fallback)
	assert.Equal(t, "fallback", res.Provider)
	assert.Empty(t, res.Sources)
	assert.Contains(t, res.Reply, "contact form")
}

func TestChatbotTimesOut(t *testing.T) {
	bot := NewChatbot(ChatbotOptions{
		Provider:  blockingProvider{},
		Retriever: NewRetriever(staticCorpus(testSnippets), time.Hour),
		Timeout:   20 * time.Millisecond,
	})

	start := time.Now()
	res, apiErr := bot.Reply(context.Background(), types.ChatRequest{Messages: []types.ChatMessage{userMsg("chess")}})
	require.Nil(t, apiErr)
	assert.True(t, res.Fallback)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestChatbotRejectsInvalidRequest(t *testing.T) {
	bot := NewChatbot(ChatbotOptions{})
	res, apiErr := bot.Reply(context.Background(), types.ChatRequest{})
	assert.Nil(t, res)
	require.NotNil(t, apiErr)
	assert.Equal(t, types.ApiErrorTypeValidation, apiErr.Type)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", excerpt("short\n  text", 50))
	got := excerpt(strings.Repeat("word ", 100), 20)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 23)
}
