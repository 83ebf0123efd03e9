package model

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio-server/types"

	"go.uber.org/zap"
)

const (
	MaxMessages      = 20
	MaxMessageLength = 2000
	DefaultTopK      = 4
)

type ChatbotOptions struct {
	Provider      Provider // nil answers from retrieval only
	Retriever     *Retriever
	OwnerName     func() string
	HistoryBudget int
	Timeout       time.Duration
	TopK          int
}

type Chatbot struct {
	provider      Provider
	retriever     *Retriever
	ownerName     func() string
	historyBudget int
	timeout       time.Duration
	topK          int
}

func NewChatbot(opts ChatbotOptions) *Chatbot {
	c := &Chatbot{
		provider:      opts.Provider,
		retriever:     opts.Retriever,
		ownerName:     opts.OwnerName,
		historyBudget: opts.HistoryBudget,
		timeout:       opts.Timeout,
		topK:          opts.TopK,
	}
	if c.historyBudget <= 0 {
		c.historyBudget = 3000
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if c.topK <= 0 {
		c.topK = DefaultTopK
	}
	if c.ownerName == nil {
		c.ownerName = func() string { return "the site owner" }
	}
	return c
}

func (c *Chatbot) Retriever() *Retriever {
	return c.retriever
}

// ValidateChatRequest enforces 1-20 messages, each at most 2000 characters, ending with a
// user turn.
func ValidateChatRequest(req types.ChatRequest) *types.ApiError {
	fields := map[string]string{}

	switch {
	case len(req.Messages) == 0:
		fields["messages"] = "at least one message is required"
	case len(req.Messages) > MaxMessages:
		fields["messages"] = fmt.Sprintf("at most %d messages are allowed", MaxMessages)
	case req.Messages[len(req.Messages)-1].Role != RoleUser:
		fields["messages"] = "the last message must be from the user"
	}

	for i, m := range req.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			fields[fmt.Sprintf("messages[%d].role", i)] = "must be user or assistant"
		}
		if strings.TrimSpace(m.Content) == "" {
			fields[fmt.Sprintf("messages[%d].content", i)] = "must not be empty"
		} else if utf8.RuneCountInString(m.Content) > MaxMessageLength {
			fields[fmt.Sprintf("messages[%d].content", i)] = fmt.Sprintf("must be at most %d characters", MaxMessageLength)
		}
	}

	if len(fields) == 0 {
		return nil
	}

	return &types.ApiError{
		Type:   types.ApiErrorTypeValidation,
		Status: http.StatusBadRequest,
		Msg:    "Invalid chat request",
		Fields: fields,
	}
}

// Reply answers the last user message. The only error it returns is a validation error;
// provider failures produce a fallback answer built from retrieved snippets.
func (c *Chatbot) Reply(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, *types.ApiError) {
	if apiErr := ValidateChatRequest(req); apiErr != nil {
		return nil, apiErr
	}

	question := req.Messages[len(req.Messages)-1].Content

	var snippets []Snippet
	if c.retriever != nil {
		snippets = c.retriever.Search(ctx, question, c.topK)
	}

	sources := make([]types.ChatSource, 0, len(snippets))
	for _, s := range snippets {
		sources = append(sources, types.ChatSource{Kind: s.Kind, Title: s.Title, Url: s.Url})
	}

	log := zap.L().With(zap.String("sessionId", req.SessionId), zap.Int("snippets", len(snippets)))

	if c.provider == nil {
		log.Debug("chat provider not configured, answering from retrieval")
		return c.fallback(snippets, sources), nil
	}

	history := TrimHistory(req.Messages, c.historyBudget)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := c.provider.Complete(ctx, c.systemPrompt(snippets), history)
	if err != nil {
		log.Warn("chat provider failed, sending fallback answer",
			zap.String("provider", c.provider.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		res := c.fallback(snippets, sources)
		res.Provider = c.provider.Name()
		res.Model = c.provider.Model()
		return res, nil
	}

	log.Info("chat reply",
		zap.String("provider", c.provider.Name()),
		zap.Int("historyMessages", len(history)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &types.ChatResponse{
		Reply:    strings.TrimSpace(reply),
		Sources:  sources,
		Provider: c.provider.Name(),
		Model:    c.provider.Model(),
	}, nil
}

func (c *Chatbot) systemPrompt(snippets []Snippet) string {
	var b strings.Builder
	name := c.ownerName()

	fmt.Fprintf(&b, "You are the assistant on %s's portfolio website. Answer questions about %s's work, skills and background ", name, name)
	b.WriteString("using only the context below. If the context doesn't cover the question, say so and suggest the contact form. ")
	b.WriteString("Keep answers short and friendly. Never invent employers, dates or projects.\n\n")

	if len(snippets) == 0 {
		b.WriteString("No context matched this question.\n")
		return b.String()
	}

	b.WriteString("Context:\n")
	for _, s := range snippets {
		fmt.Fprintf(&b, "\n[%s] %s\n%s\n", s.Kind, s.Title, strings.TrimSpace(s.Text))
	}

	return b.String()
}

func (c *Chatbot) fallback(snippets []Snippet, sources []types.ChatSource) *types.ChatResponse {
	var b strings.Builder

	if len(snippets) == 0 {
		b.WriteString("The assistant is unavailable right now and I couldn't find anything on this site matching your question. ")
		b.WriteString("Feel free to use the contact form and I'll get back to you.")
	} else {
		b.WriteString("The assistant is unavailable right now, but here is what I found on this site:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "\n- %s: %s", s.Title, excerpt(s.Text, 160))
		}
	}

	return &types.ChatResponse{
		Reply:    b.String(),
		Sources:  sources,
		Provider: "fallback",
		Fallback: true,
	}
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
