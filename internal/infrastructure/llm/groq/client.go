// Package groq talks to an OpenAI-compatible chat-completions endpoint
// (Groq by default). It backs the query rewriter and the answer generator;
// both degrade to deterministic fallbacks upstream when the client is not
// configured or a call fails.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

type Client struct {
	api      *openai.Client
	model    string
	executor *resilience.Executor
}

func New(apiKey, baseURL, model string, executor *resilience.Executor) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL

	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		model:    model,
		executor: executor,
	}
}

type Rewriter struct {
	client *Client
}

func NewRewriter(client *Client) *Rewriter {
	return &Rewriter{client: client}
}

// Rewrite asks for 5 paraphrases of the question and returns the raw
// completion; parsing happens in the pipeline.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	return r.client.complete(ctx, "llm.rewrite", openai.ChatCompletionRequest{
		Model: r.client.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rewriteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildRewritePrompt(question)},
		},
		Temperature: 0.8,
		MaxTokens:   300,
	})
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, blocks []domain.ContextBlock) (string, error) {
	return g.client.complete(ctx, "llm.answer", openai.ChatCompletionRequest{
		Model: g.client.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnswerPrompt(question, blocks)},
		},
	})
}

func (c *Client) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	var content string
	call := func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion: empty choices")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyAPIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// classifyAPIError retries rate limits and server-side failures; client
// errors fail fast and do not trip the breaker.
func classifyAPIError(err error) resilience.ErrorClassification {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		case apiErr.HTTPStatusCode >= 400:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}
	// Transport-level failures are worth retrying.
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
