package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"qahiring/cv-analyzer/internal/config"
)

const recruiterSystemMessage = "You are a technical recruiter specialising in Quality Assurance Engineer roles. You answer with a single JSON object."

type openAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

func NewOpenAIProvider(cfg config.LLMConfig) LLMProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &openAIProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.OpenAIModel,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}
}

func (o *openAIProvider) Name() string {
	return "openai"
}

// Generate implements LLMProvider.
func (o *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.F(o.model),
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(recruiterSystemMessage),
				openai.UserMessage(prompt),
			}),
			Temperature: openai.F(o.temperature),
			MaxTokens:   openai.F(o.maxTokens),
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return resp.Choices[0].Message.Content, nil
}
