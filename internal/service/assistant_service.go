package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/resilient"
	"finai/internal/synthetic"
)

// AssistantSystemPrompt frames every chat reply
const AssistantSystemPrompt = "You are FinAI, a financial assistant specializing in stock market analysis, " +
	"investment strategies, and financial education. Provide helpful, accurate, and concise responses."

// AssistantMaxTokens bounds chat replies
const AssistantMaxTokens = 1024

// AssistantService answers chat messages through the LLM chain, falling back to canned FAQ answers
type AssistantService struct {
	replies *resilient.Fetcher[domain.CompletionRequest, string]
}

// NewAssistantService creates a new AssistantService. llms are tried in order.
func NewAssistantService(llms []domain.LLMProvider, gen *synthetic.Generator, timeout time.Duration, observer resilient.Observer, log *logger.Logger) *AssistantService {
	if gen == nil {
		gen = synthetic.New()
	}

	return &AssistantService{
		replies: resilient.New(resilient.Config[domain.CompletionRequest, string]{
			Kind:      "chat",
			Providers: completionProviders(llms),
			Validate:  validateCompletion,
			Fallback: func(req domain.CompletionRequest) string {
				return gen.ChatReply(req.Prompt)
			},
			Timeout:  timeout,
			Logger:   log,
			Observer: observer,
		}),
	}
}

// Reply answers message, using documentContext as extra system context when non-empty
func (s *AssistantService) Reply(ctx context.Context, message, documentContext string) resilient.Result[string] {
	result, _ := s.replies.Fetch(ctx, domain.CompletionRequest{
		System:    AssistantSystemPrompt,
		Context:   documentContext,
		Prompt:    message,
		MaxTokens: AssistantMaxTokens,
	})
	return result
}

func completionProviders(llms []domain.LLMProvider) []resilient.Provider[domain.CompletionRequest, string] {
	providers := make([]resilient.Provider[domain.CompletionRequest, string], 0, len(llms))
	for _, llm := range llms {
		providers = append(providers, resilient.Provider[domain.CompletionRequest, string]{
			Name:  llm.Name(),
			Fetch: llm.Complete,
		})
	}
	return providers
}

func validateCompletion(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("empty completion")
	}
	return nil
}
