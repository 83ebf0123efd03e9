package model

import (
	"sync"

	"portfolio-server/types"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const (
	// Every message follows {"role": "...", "content": "..."}, a 4 token overhead
	TokensPerMessage = 4

	// each role name costs 1 token
	TokensPerName = 1

	TokensPerRequest = 3
)

var (
	tkmOnce sync.Once
	tkm     *tiktoken.Tiktoken
)

// the encoding is fetched on first use; without it we fall back to ~4 chars per token
func encoding() *tiktoken.Tiktoken {
	tkmOnce.Do(func() {
		var err error
		tkm, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			zap.L().Warn("tiktoken encoding unavailable, using character estimate", zap.Error(err))
			tkm = nil
		}
	})
	return tkm
}

func GetNumTokensEstimate(text string) int {
	if enc := encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

func GetMessagesTokenEstimate(messages ...types.ChatMessage) int {
	tokens := 0

	for _, msg := range messages {
		tokens += TokensPerMessage
		tokens += TokensPerName
		tokens += GetNumTokensEstimate(msg.Content)
	}

	return tokens
}

// TrimHistory drops the oldest messages until the rest fit in budget. The latest message
// is always kept, and the result never starts with an assistant turn.
func TrimHistory(messages []types.ChatMessage, budget int) []types.ChatMessage {
	if len(messages) == 0 {
		return messages
	}

	start := len(messages) - 1
	used := GetMessagesTokenEstimate(messages[start]) + TokensPerRequest
	for start > 0 {
		cost := GetMessagesTokenEstimate(messages[start-1])
		if used+cost > budget {
			break
		}
		used += cost
		start--
	}

	for start < len(messages)-1 && messages[start].Role != RoleUser {
		start++
	}

	return messages[start:]
}
